package definitions

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/repositories/templates"
)

// ReloaderConfig configures a Reloader
type ReloaderConfig struct {
	Loader    *Loader
	Store     *Store
	Templates templates.Repository
}

// Validate validates the config
func (c *ReloaderConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Loader == nil {
		vb.RequiredField("Loader")
	}
	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.Templates == nil {
		vb.RequiredField("Templates")
	}
	return vb.Build()
}

// Reloader loads the definitions directory and installs the result. It is
// called at startup and, through the tick loop, whenever the watcher fires.
type Reloader struct {
	loader    *Loader
	store     *Store
	templates templates.Repository
}

// NewReloader creates a reloader
func NewReloader(cfg *ReloaderConfig) (*Reloader, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid reloader config")
	}
	return &Reloader{loader: cfg.Loader, store: cfg.Store, templates: cfg.Templates}, nil
}

// ReloadOutput summarizes an installed catalog
type ReloadOutput struct {
	Templates  int
	LootTables int
	Shapes     int
	Errors     []error
}

// Reload loads and installs the catalog. A failed load leaves the live
// catalog untouched.
func (r *Reloader) Reload(ctx context.Context) (*ReloadOutput, error) {
	loaded, err := r.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	replaced, err := r.templates.Replace(ctx, &templates.ReplaceInput{
		Templates: loaded.Catalog.Templates,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to install templates")
	}
	r.store.Swap(loaded.Catalog)

	for _, id := range replaced.Skipped {
		slog.Warn("template not installed", "template", id)
	}

	return &ReloadOutput{
		Templates:  replaced.Count,
		LootTables: len(loaded.Catalog.LootTables),
		Shapes:     len(loaded.Catalog.Shapes),
		Errors:     loaded.Errors,
	}, nil
}
