// Package client holds the commands that talk to a running endguard server
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/handlers/api/v1alpha1"
)

var (
	serverAddr string
	timeout    time.Duration
)

// ClientCmd groups the encounter service commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Query or drive a running endguard server",
	Long: `Client commands call the encounter service of a running server over gRPC.
Errors keep the server's status code, e.g. NOT_FOUND for an unknown world.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "Encounter service address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Deadline for each call")

	ClientCmd.AddCommand(statusCmd, respawnCmd, historyCmd)
}

// rpc is one EncounterClient method
type rpc func(*v1alpha1.EncounterClient, context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

// call sends fields to the server through method and returns the response
// fields. Status errors are turned back into *errors.Error.
func call(cmd *cobra.Command, method rpc, what string, fields map[string]any) (map[string]*structpb.Value, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to encode request")
	}

	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}
	defer func() { _ = conn.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := method(v1alpha1.NewEncounterClient(conn), ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, errors.FromGRPCError(err))
	}
	return resp.GetFields(), nil
}
