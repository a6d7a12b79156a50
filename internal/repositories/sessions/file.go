package sessions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/pkg/clock"
)

// FileConfig holds the configuration for the file repository
type FileConfig struct {
	Path  string
	Clock clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *FileConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Path", c.Path, vb)
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

type fileRepository struct {
	path  string
	clock clock.Clock
}

// NewFileRepository creates a repository storing the snapshot as a JSON file
func NewFileRepository(cfg *FileConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &fileRepository{path: cfg.Path, clock: cfg.Clock}, nil
}

func (r *fileRepository) Save(_ context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	snapshot := newSnapshot(input, r.clock)
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal snapshot")
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create snapshot directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".snapshot-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create snapshot file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, errors.Wrap(err, "failed to write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close snapshot")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return nil, errors.Wrap(err, "failed to move snapshot into place")
	}

	return &SaveOutput{Snapshot: snapshot}, nil
}

func (r *fileRepository) Consume(_ context.Context, _ *ConsumeInput) (*ConsumeOutput, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("no session snapshot")
		}
		return nil, errors.Wrap(err, "failed to read snapshot")
	}

	if err := os.Remove(r.path); err != nil {
		return nil, errors.Wrap(err, "failed to delete snapshot")
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.ParseError(r.path, "", err)
	}

	return &ConsumeOutput{Snapshot: &snapshot}, nil
}

func newSnapshot(input *SaveInput, c clock.Clock) *Snapshot {
	return &Snapshot{
		ID:      uuid.New(),
		Worlds:  input.Worlds,
		SavedAt: c.Now(),
	}
}
