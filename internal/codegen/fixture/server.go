// Package fixture holds a router rendered by the code generator together
// with the RPC server interface it binds to. Its messages come from
// compiled google.api and grpc.health.v1 packages, so the rendered handlers
// are built and served against real protoc-gen-go types.
package fixture

import (
	"context"

	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
)

// FixtureServiceServer is the server API of fixture.v1.FixtureService, in
// the form protoc-gen-go-grpc declares it.
type FixtureServiceServer interface {
	GetReference(context.Context, *annotations.ResourceReference) (*annotations.ResourceReference, error)
	CheckStatus(context.Context, *grpc_health_v1.HealthCheckResponse) (*grpc_health_v1.HealthCheckResponse, error)
	CreateReference(context.Context, *annotations.ResourceReference) (*annotations.ResourceReference, error)
	DeleteReference(context.Context, *annotations.ResourceReference) (*emptypb.Empty, error)
	WatchHealth(*grpc_health_v1.HealthCheckRequest, grpc.ServerStreamingServer[grpc_health_v1.HealthCheckResponse]) error
}
