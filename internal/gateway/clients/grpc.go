package clients

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	rpc "mealplan-system/internal/rpc/ordering"
)

type GRPCClients struct {
	Ordering     rpc.OrderingServiceClient
	health       healthpb.HealthClient
	orderingConn *grpc.ClientConn
}

// NewGRPCClients sets up the ordering service connection. The connection is
// lazy, so an unreachable service shows up in health checks, not here.
func NewGRPCClients(orderingAddr string) (*GRPCClients, error) {
	conn, err := grpc.NewClient(orderingAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("ordering service connection failed: %w", err)
	}

	log.Printf("✅ Ordering service client ready (%s)", orderingAddr)
	return newClients(conn), nil
}

func newClients(conn *grpc.ClientConn) *GRPCClients {
	return &GRPCClients{
		Ordering:     rpc.NewOrderingServiceClient(conn),
		health:       healthpb.NewHealthClient(conn),
		orderingConn: conn,
	}
}

func (c *GRPCClients) Close() {
	if c != nil && c.orderingConn != nil {
		c.orderingConn.Close()
	}
}

// IsOrderingServiceHealthy asks the service's gRPC health endpoint.
func (c *GRPCClients) IsOrderingServiceHealthy(ctx context.Context) bool {
	if c == nil || c.health == nil {
		return false
	}
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		return false
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
}
