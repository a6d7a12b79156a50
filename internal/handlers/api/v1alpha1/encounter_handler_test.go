package v1alpha1_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/endguard/internal/engine"
	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/handlers/api/v1alpha1"
	"github.com/KirkDiggler/endguard/internal/orchestrators/encounter"
	encountermock "github.com/KirkDiggler/endguard/internal/orchestrators/encounter/mock"
	"github.com/KirkDiggler/endguard/internal/pkg/clock"
	"github.com/KirkDiggler/endguard/internal/pkg/idgen"
	loothistory "github.com/KirkDiggler/endguard/internal/repositories/loot_history"
)

type inlineExecutor struct {
	calls int
}

func (e *inlineExecutor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	e.calls++
	return fn(ctx)
}

type EncounterHandlerTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockEncounter *encountermock.MockService
	executor      *inlineExecutor
	history       *loothistory.InMemoryRepository
	server        *grpc.Server
	conn          *grpc.ClientConn
	client        *v1alpha1.EncounterClient
	ctx           context.Context
}

func TestEncounterHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(EncounterHandlerTestSuite))
}

func (s *EncounterHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockEncounter = encountermock.NewMockService(s.ctrl)
	s.executor = &inlineExecutor{}
	s.history = loothistory.NewInMemory(
		clock.NewFixed(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
		idgen.NewSequential("loot"),
		10,
	)
	s.ctx = context.Background()

	handler, err := v1alpha1.NewEncounterHandler(&v1alpha1.EncounterHandlerConfig{
		EncounterService: s.mockEncounter,
		Executor:         s.executor,
		History:          s.history,
	})
	s.Require().NoError(err)

	s.startServer(handler)
}

func (s *EncounterHandlerTestSuite) startServer(handler v1alpha1.EncounterServiceServer) {
	lis := bufconn.Listen(1024 * 1024)
	s.server = grpc.NewServer()
	v1alpha1.RegisterEncounterServiceServer(s.server, handler)
	go func() {
		_ = s.server.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.conn = conn
	s.client = v1alpha1.NewEncounterClient(conn)
}

func (s *EncounterHandlerTestSuite) TearDownTest() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.server != nil {
		s.server.Stop()
	}
	s.ctrl.Finish()
}

func (s *EncounterHandlerTestSuite) request(fields map[string]any) *structpb.Struct {
	req, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	return req
}

func (s *EncounterHandlerTestSuite) TestNewEncounterHandlerRequiresDependencies() {
	_, err := v1alpha1.NewEncounterHandler(&v1alpha1.EncounterHandlerConfig{Executor: s.executor})
	s.True(errors.IsInvalidArgument(err))

	_, err = v1alpha1.NewEncounterHandler(&v1alpha1.EncounterHandlerConfig{EncounterService: s.mockEncounter})
	s.True(errors.IsInvalidArgument(err))
}

func (s *EncounterHandlerTestSuite) TestGetWorldStatus_Success() {
	s.mockEncounter.EXPECT().
		GetWorldStatus(gomock.Any(), &encounter.GetWorldStatusInput{World: "world_the_end"}).
		Return(&encounter.GetWorldStatusOutput{Status: &encounter.WorldStatus{
			World:               "world_the_end",
			State:               entities.SessionStateRespawning,
			PreviousTemplate:    "classic",
			RespawningTemplate:  "inferno",
			SecondsUntilRespawn: 42,
		}}, nil)

	resp, err := s.client.GetWorldStatus(s.ctx, s.request(map[string]any{"world": "world_the_end"}))
	s.Require().NoError(err)

	fields := resp.GetFields()
	s.Equal("world_the_end", fields["world"].GetStringValue())
	s.Equal("respawning", fields["state"].GetStringValue())
	s.Equal("classic", fields["previous_template"].GetStringValue())
	s.Equal("inferno", fields["respawning_template"].GetStringValue())
	s.Equal("", fields["active_template"].GetStringValue())
	s.Equal(float64(42), fields["seconds_until_respawn"].GetNumberValue())
	s.Equal(1, s.executor.calls)
}

func (s *EncounterHandlerTestSuite) TestGetWorldStatus_MissingWorld() {
	_, err := s.client.GetWorldStatus(s.ctx, s.request(map[string]any{}))
	s.Require().Error(err)

	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.InvalidArgument, st.Code())
	s.Contains(st.Message(), "world is required")
	s.Equal(0, s.executor.calls)
}

func (s *EncounterHandlerTestSuite) TestGetWorldStatus_UnknownWorld() {
	s.mockEncounter.EXPECT().
		GetWorldStatus(gomock.Any(), gomock.Any()).
		Return(nil, errors.NotFound("world nowhere has no encounter"))

	_, err := s.client.GetWorldStatus(s.ctx, s.request(map[string]any{"world": "nowhere"}))

	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.NotFound, st.Code())
}

func (s *EncounterHandlerTestSuite) TestStartRespawn_MapsRequest() {
	s.mockEncounter.EXPECT().
		StartRespawn(gomock.Any(), &encounter.StartRespawnInput{
			World:        "world_the_end",
			DelaySeconds: 30,
			TemplateID:   "inferno",
			LootTableID:  "jackpot",
		}).
		Return(&encounter.StartRespawnOutput{Started: true}, nil)

	resp, err := s.client.StartRespawn(s.ctx, s.request(map[string]any{
		"world":         "world_the_end",
		"delay_seconds": 30,
		"template_id":   "inferno",
		"loot_table_id": "jackpot",
	}))
	s.Require().NoError(err)
	s.True(resp.GetFields()["started"].GetBoolValue())
}

func (s *EncounterHandlerTestSuite) TestStartRespawn_Rejected() {
	s.mockEncounter.EXPECT().
		StartRespawn(gomock.Any(), gomock.Any()).
		Return(&encounter.StartRespawnOutput{Started: false}, nil)

	resp, err := s.client.StartRespawn(s.ctx, s.request(map[string]any{"world": "world_the_end"}))
	s.Require().NoError(err)
	s.False(resp.GetFields()["started"].GetBoolValue())
}

func (s *EncounterHandlerTestSuite) TestStartRespawn_ServiceClosed() {
	s.mockEncounter.EXPECT().
		StartRespawn(gomock.Any(), gomock.Any()).
		Return(nil, errors.FailedPrecondition("encounter service is shut down"))

	_, err := s.client.StartRespawn(s.ctx, s.request(map[string]any{"world": "world_the_end"}))

	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.FailedPrecondition, st.Code())
}

func (s *EncounterHandlerTestSuite) TestListLootHistory_NewestFirst() {
	for _, table := range []string{"common", "rare"} {
		_, err := s.history.Record(s.ctx, &loothistory.RecordInput{Entry: &loothistory.Entry{
			World:     "world_the_end",
			TableID:   table,
			Killer:    "Steve",
			EggPlaced: true,
			Items:     []engine.ItemStack{{Material: "DIAMOND", Amount: 3}},
			Commands:  []string{"say gg"},
		}})
		s.Require().NoError(err)
	}

	resp, err := s.client.ListLootHistory(s.ctx, s.request(map[string]any{"world": "world_the_end"}))
	s.Require().NoError(err)

	entries := resp.GetFields()["entries"].GetListValue().GetValues()
	s.Require().Len(entries, 2)

	newest := entries[0].GetStructValue().GetFields()
	s.Equal("rare", newest["table_id"].GetStringValue())
	s.Equal("Steve", newest["killer"].GetStringValue())
	s.True(newest["egg_placed"].GetBoolValue())
	s.Equal("2026-05-01T12:00:00Z", newest["created_at"].GetStringValue())

	items := newest["items"].GetListValue().GetValues()
	s.Require().Len(items, 1)
	s.Equal("DIAMOND", items[0].GetStructValue().GetFields()["material"].GetStringValue())
	s.Equal(float64(3), items[0].GetStructValue().GetFields()["amount"].GetNumberValue())
	s.Equal("say gg", newest["commands"].GetListValue().GetValues()[0].GetStringValue())
}

func (s *EncounterHandlerTestSuite) TestListLootHistory_Limit() {
	for i := 0; i < 3; i++ {
		_, err := s.history.Record(s.ctx, &loothistory.RecordInput{Entry: &loothistory.Entry{
			World:   "world_the_end",
			TableID: "common",
		}})
		s.Require().NoError(err)
	}

	resp, err := s.client.ListLootHistory(s.ctx, s.request(map[string]any{"world": "world_the_end", "limit": 2}))
	s.Require().NoError(err)
	s.Len(resp.GetFields()["entries"].GetListValue().GetValues(), 2)

	_, err = s.client.ListLootHistory(s.ctx, s.request(map[string]any{"world": "world_the_end", "limit": -1}))
	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.InvalidArgument, st.Code())
}

func (s *EncounterHandlerTestSuite) TestListLootHistory_Disabled() {
	s.TearDownTest()

	s.ctrl = gomock.NewController(s.T())
	handler, err := v1alpha1.NewEncounterHandler(&v1alpha1.EncounterHandlerConfig{
		EncounterService: encountermock.NewMockService(s.ctrl),
		Executor:         s.executor,
	})
	s.Require().NoError(err)
	s.startServer(handler)

	_, err = s.client.ListLootHistory(s.ctx, s.request(map[string]any{"world": "world_the_end"}))

	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.FailedPrecondition, st.Code())
}
