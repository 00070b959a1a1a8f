package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/colony/queries"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "colony.v1.Colony"

// Method names
const (
	MethodListWorkers         = "ListWorkers"
	MethodGetWorker           = "GetWorker"
	MethodSpawnWorker         = "SpawnWorker"
	MethodRemoveWorker        = "RemoveWorker"
	MethodForceIdle           = "ForceIdle"
	MethodChangeProfession    = "ChangeProfession"
	MethodListStructures      = "ListStructures"
	MethodPlaceStructure      = "PlaceStructure"
	MethodRemoveStructure     = "RemoveStructure"
	MethodStructureResources  = "StructureResources"
	MethodAssignWorker        = "AssignWorker"
	MethodUnassignWorker      = "UnassignWorker"
	MethodClearZone           = "ClearZone"
	MethodRespawnHarvestables = "RespawnHarvestables"
	MethodSaveState           = "SaveState"
	MethodRestoreState        = "RestoreState"
	MethodResourceHistory     = "ResourceHistory"
	MethodStatus              = "Status"
)

// requestFactories maps each RPC onto the mediator request it carries
var requestFactories = map[string]func() mediator.Request{
	MethodListWorkers:         func() mediator.Request { return &queries.ListWorkersQuery{} },
	MethodGetWorker:           func() mediator.Request { return &queries.GetWorkerQuery{} },
	MethodSpawnWorker:         func() mediator.Request { return &commands.SpawnWorkerCommand{} },
	MethodRemoveWorker:        func() mediator.Request { return &commands.RemoveWorkerCommand{} },
	MethodForceIdle:           func() mediator.Request { return &commands.ForceIdleCommand{} },
	MethodChangeProfession:    func() mediator.Request { return &commands.ChangeProfessionCommand{} },
	MethodListStructures:      func() mediator.Request { return &queries.ListStructuresQuery{} },
	MethodPlaceStructure:      func() mediator.Request { return &commands.PlaceStructureCommand{} },
	MethodRemoveStructure:     func() mediator.Request { return &commands.RemoveStructureCommand{} },
	MethodStructureResources:  func() mediator.Request { return &queries.StructureResourcesQuery{} },
	MethodAssignWorker:        func() mediator.Request { return &commands.AssignWorkerCommand{} },
	MethodUnassignWorker:      func() mediator.Request { return &commands.UnassignWorkerCommand{} },
	MethodClearZone:           func() mediator.Request { return &commands.ClearZoneCommand{} },
	MethodRespawnHarvestables: func() mediator.Request { return &commands.RespawnHarvestablesCommand{} },
	MethodSaveState:           func() mediator.Request { return &commands.SaveStateCommand{} },
	MethodRestoreState:        func() mediator.Request { return &commands.RestoreStateCommand{} },
	MethodResourceHistory:     func() mediator.Request { return &queries.ResourceHistoryQuery{} },
	MethodStatus:              func() mediator.Request { return &queries.StatusQuery{} },
}

// ColonyServer is implemented by the service registered under ServiceName.
// Every method takes and returns a JSON-shaped structpb.Struct.
type ColonyServer interface {
	Dispatch(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error)
}

// colonyService decodes each call into its mediator request and sends it
type colonyService struct {
	mediator mediator.Mediator
}

func (s *colonyService) Dispatch(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	factory, ok := requestFactories[method]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", method)
	}

	req := factory()
	if err := decodeStruct(in, req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s request: %v", method, err)
	}

	resp, err := s.mediator.Send(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := encodeStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode %s response: %v", method, err)
	}
	return out, nil
}

// ServiceDesc describes the colony service for grpc.Server.RegisterService
func ServiceDesc() *grpc.ServiceDesc {
	methods := make([]grpc.MethodDesc, 0, len(requestFactories))
	for name := range requestFactories {
		methods = append(methods, grpc.MethodDesc{
			MethodName: name,
			Handler:    unaryHandler(name),
		})
	}
	return &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*ColonyServer)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "colony/v1/colony.proto",
	}
}

func unaryHandler(method string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(ColonyServer)
		if interceptor == nil {
			return server.Dispatch(ctx, method, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return server.Dispatch(ctx, method, req.(*structpb.Struct))
		})
	}
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// encodeStruct converts a Go value with a JSON object form into a Struct
func encodeStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return out, nil
}

// decodeStruct fills v from a Struct; a nil Struct leaves v untouched
func decodeStruct(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
