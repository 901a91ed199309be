// Package rpc exposes the infrastructure provisioning pipeline as a gRPC
// service. Messages travel as google.protobuf.Struct values carrying the JSON
// form of the request and response types below.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	corev1 "k8s.io/api/core/v1"

	"github.com/lzjever/mbos-wrt/internal/infra/provision"
	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
)

const ServiceName = "wrt.infra.v1.InfraService"

const (
	provisionMethod = "/" + ServiceName + "/Provision"
	teardownMethod  = "/" + ServiceName + "/Teardown"
)

type ProvisionRequest struct {
	WorkspaceID string                        `json:"workspace_id"`
	Environment provision.InternalEnvironment `json:"environment"`
	Pods        []corev1.Pod                  `json:"pods,omitempty"`
	Routes      []routev1.Route               `json:"routes,omitempty"`
	DryRun      bool                          `json:"dry_run,omitempty"`
}

type ProvisionResponse struct {
	Pods   []corev1.Pod    `json:"pods"`
	Routes []routev1.Route `json:"routes"`
}

type TeardownRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

type TeardownResponse struct{}

// InfraServer is the server API for the InfraService.
type InfraServer interface {
	Provision(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Teardown(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterInfraServer(s grpc.ServiceRegistrar, srv InfraServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InfraServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Provision", Handler: provisionHandler},
		{MethodName: "Teardown", Handler: teardownHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wrt/infra/v1/infra.proto",
}

func provisionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InfraServer).Provision(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: provisionMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InfraServer).Provision(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func teardownHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InfraServer).Teardown(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: teardownMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InfraServer).Teardown(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	return nil
}
