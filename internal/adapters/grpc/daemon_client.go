package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/colony/queries"
)

// DaemonClient talks to a running colony daemon
type DaemonClient struct {
	conn *grpc.ClientConn
}

// NewDaemonClient connects to the daemon's unix socket
// socketPath should be a Unix domain socket path (e.g., "/tmp/colony-daemon.sock")
func NewDaemonClient(socketPath string) (*DaemonClient, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return &DaemonClient{conn: conn}, nil
}

// NewDaemonClientWithConn wraps an existing connection
func NewDaemonClientWithConn(conn *grpc.ClientConn) *DaemonClient {
	return &DaemonClient{conn: conn}
}

// Close closes the gRPC connection
func (c *DaemonClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// invoke sends req under method and decodes the reply into a new Resp
func invoke[Resp any](ctx context.Context, c *DaemonClient, method string, req any) (*Resp, error) {
	in, err := encodeStruct(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return nil, err
	}
	resp := new(Resp)
	if err := decodeStruct(out, resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return resp, nil
}

// Health reports whether the daemon is serving
func (c *DaemonClient) Health(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, err
	}
	return resp.Status == healthpb.HealthCheckResponse_SERVING, nil
}

func (c *DaemonClient) ListWorkers(ctx context.Context, q *queries.ListWorkersQuery) (*queries.ListWorkersResponse, error) {
	return invoke[queries.ListWorkersResponse](ctx, c, MethodListWorkers, q)
}

func (c *DaemonClient) GetWorker(ctx context.Context, q *queries.GetWorkerQuery) (*queries.GetWorkerResponse, error) {
	return invoke[queries.GetWorkerResponse](ctx, c, MethodGetWorker, q)
}

func (c *DaemonClient) SpawnWorker(ctx context.Context, cmd *commands.SpawnWorkerCommand) (*commands.SpawnWorkerResponse, error) {
	return invoke[commands.SpawnWorkerResponse](ctx, c, MethodSpawnWorker, cmd)
}

func (c *DaemonClient) RemoveWorker(ctx context.Context, cmd *commands.RemoveWorkerCommand) (*commands.WorkerAck, error) {
	return invoke[commands.WorkerAck](ctx, c, MethodRemoveWorker, cmd)
}

func (c *DaemonClient) ForceIdle(ctx context.Context, cmd *commands.ForceIdleCommand) (*commands.WorkerAck, error) {
	return invoke[commands.WorkerAck](ctx, c, MethodForceIdle, cmd)
}

func (c *DaemonClient) ChangeProfession(ctx context.Context, cmd *commands.ChangeProfessionCommand) (*commands.WorkerAck, error) {
	return invoke[commands.WorkerAck](ctx, c, MethodChangeProfession, cmd)
}

func (c *DaemonClient) ListStructures(ctx context.Context, q *queries.ListStructuresQuery) (*queries.ListStructuresResponse, error) {
	return invoke[queries.ListStructuresResponse](ctx, c, MethodListStructures, q)
}

func (c *DaemonClient) PlaceStructure(ctx context.Context, cmd *commands.PlaceStructureCommand) (*commands.PlaceStructureResponse, error) {
	return invoke[commands.PlaceStructureResponse](ctx, c, MethodPlaceStructure, cmd)
}

func (c *DaemonClient) RemoveStructure(ctx context.Context, cmd *commands.RemoveStructureCommand) (*commands.RemoveStructureResponse, error) {
	return invoke[commands.RemoveStructureResponse](ctx, c, MethodRemoveStructure, cmd)
}

func (c *DaemonClient) StructureResources(ctx context.Context, q *queries.StructureResourcesQuery) (*queries.StructureResourcesResponse, error) {
	return invoke[queries.StructureResourcesResponse](ctx, c, MethodStructureResources, q)
}

func (c *DaemonClient) AssignWorker(ctx context.Context, cmd *commands.AssignWorkerCommand) (*commands.AssignWorkerResponse, error) {
	return invoke[commands.AssignWorkerResponse](ctx, c, MethodAssignWorker, cmd)
}

func (c *DaemonClient) UnassignWorker(ctx context.Context, cmd *commands.UnassignWorkerCommand) (*commands.WorkerAck, error) {
	return invoke[commands.WorkerAck](ctx, c, MethodUnassignWorker, cmd)
}

func (c *DaemonClient) ClearZone(ctx context.Context, cmd *commands.ClearZoneCommand) (*commands.ClearZoneResponse, error) {
	return invoke[commands.ClearZoneResponse](ctx, c, MethodClearZone, cmd)
}

func (c *DaemonClient) RespawnHarvestables(ctx context.Context, cmd *commands.RespawnHarvestablesCommand) (*commands.RespawnHarvestablesResponse, error) {
	return invoke[commands.RespawnHarvestablesResponse](ctx, c, MethodRespawnHarvestables, cmd)
}

func (c *DaemonClient) SaveState(ctx context.Context) (*commands.SaveStateResponse, error) {
	return invoke[commands.SaveStateResponse](ctx, c, MethodSaveState, &commands.SaveStateCommand{})
}

func (c *DaemonClient) RestoreState(ctx context.Context) (*commands.RestoreStateResponse, error) {
	return invoke[commands.RestoreStateResponse](ctx, c, MethodRestoreState, &commands.RestoreStateCommand{})
}

func (c *DaemonClient) ResourceHistory(ctx context.Context, q *queries.ResourceHistoryQuery) (*queries.ResourceHistoryResponse, error) {
	return invoke[queries.ResourceHistoryResponse](ctx, c, MethodResourceHistory, q)
}

func (c *DaemonClient) Status(ctx context.Context) (*queries.StatusResponse, error) {
	return invoke[queries.StatusResponse](ctx, c, MethodStatus, &queries.StatusQuery{})
}
