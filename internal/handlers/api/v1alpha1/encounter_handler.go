package v1alpha1

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/orchestrators/encounter"
	loothistory "github.com/KirkDiggler/endguard/internal/repositories/loot_history"
)

const defaultHistoryLimit = 10

// Executor runs fn on the goroutine that owns encounter state
type Executor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EncounterHandlerConfig holds dependencies for the encounter handler
type EncounterHandlerConfig struct {
	EncounterService encounter.Service
	Executor         Executor

	// History is optional; ListLootHistory fails when it is nil
	History loothistory.Repository
}

// Validate ensures all required dependencies are present
func (c *EncounterHandlerConfig) Validate() error {
	if c.EncounterService == nil {
		return errors.InvalidArgument("encounter service is required")
	}
	if c.Executor == nil {
		return errors.InvalidArgument("executor is required")
	}
	return nil
}

// EncounterHandler implements EncounterServiceServer
type EncounterHandler struct {
	encounterService encounter.Service
	executor         Executor
	history          loothistory.Repository
}

var _ EncounterServiceServer = (*EncounterHandler)(nil)

// NewEncounterHandler creates a new encounter handler with the given configuration
func NewEncounterHandler(cfg *EncounterHandlerConfig) (*EncounterHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &EncounterHandler{
		encounterService: cfg.EncounterService,
		executor:         cfg.Executor,
		history:          cfg.History,
	}, nil
}

// GetWorldStatus reports the encounter state of one world
func (h *EncounterHandler) GetWorldStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	world := stringField(req, "world")
	if world == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("world is required"))
	}

	var out *encounter.GetWorldStatusOutput
	err := h.executor.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = h.encounterService.GetWorldStatus(ctx, &encounter.GetWorldStatusInput{World: world})
		return err
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	st := out.Status
	return toStruct(map[string]any{
		"world":                 st.World,
		"state":                 string(st.State),
		"active_template":       st.ActiveTemplate,
		"previous_template":     st.PreviousTemplate,
		"respawning_template":   st.RespawningTemplate,
		"seconds_until_respawn": st.SecondsUntilRespawn,
		"last_defeated_dragon":  st.LastDefeatedDragon,
	})
}

// StartRespawn arms a respawn countdown in a world
func (h *EncounterHandler) StartRespawn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := &encounter.StartRespawnInput{
		World:        stringField(req, "world"),
		DelaySeconds: intField(req, "delay_seconds"),
		TemplateID:   stringField(req, "template_id"),
		LootTableID:  stringField(req, "loot_table_id"),
	}
	if input.World == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("world is required"))
	}

	var out *encounter.StartRespawnOutput
	err := h.executor.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = h.encounterService.StartRespawn(ctx, input)
		return err
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return toStruct(map[string]any{"started": out.Started})
}

// ListLootHistory returns the most recent loot generated in a world
func (h *EncounterHandler) ListLootHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if h.history == nil {
		return nil, errors.ToGRPCError(errors.FailedPrecondition("loot history is disabled"))
	}

	world := stringField(req, "world")
	if world == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("world is required"))
	}
	limit := intField(req, "limit")
	if limit < 0 {
		return nil, errors.ToGRPCError(errors.InvalidArgument("limit must not be negative"))
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	out, err := h.history.List(ctx, &loothistory.ListInput{World: world, Limit: limit})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	entries := make([]any, 0, len(out.Entries))
	for _, e := range out.Entries {
		entries = append(entries, entryToMap(e))
	}

	return toStruct(map[string]any{"entries": entries})
}

func entryToMap(e *loothistory.Entry) map[string]any {
	items := make([]any, 0, len(e.Items))
	for _, item := range e.Items {
		items = append(items, map[string]any{
			"material":     item.Material,
			"amount":       item.Amount,
			"display_name": item.DisplayName,
		})
	}

	commands := make([]any, 0, len(e.Commands))
	for _, cmd := range e.Commands {
		commands = append(commands, cmd)
	}

	return map[string]any{
		"id":           e.ID,
		"world":        e.World,
		"template_id":  e.TemplateID,
		"table_id":     e.TableID,
		"dragon_id":    e.DragonID,
		"killer":       e.Killer,
		"chest_placed": e.ChestPlaced,
		"egg_placed":   e.EggPlaced,
		"items":        items,
		"commands":     commands,
		"created_at":   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.ToGRPCError(errors.Wrap(err, "failed to encode response"))
	}
	return s, nil
}

func stringField(req *structpb.Struct, name string) string {
	if req == nil {
		return ""
	}
	return req.GetFields()[name].GetStringValue()
}

func intField(req *structpb.Struct, name string) int {
	if req == nil {
		return 0
	}
	return int(req.GetFields()[name].GetNumberValue())
}
