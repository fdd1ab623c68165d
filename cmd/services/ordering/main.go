package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"mealplan-system/config"
	"mealplan-system/internal/database"
	rpc "mealplan-system/internal/rpc/ordering"
	"mealplan-system/internal/services/ordering/handler"
)

func main() {
	cfg := config.LoadConfig()

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}

	if err := database.MigrateOrderingDB(db); err != nil {
		log.Fatalf("Failed to migrate ordering database: %v", err)
	}

	lis, err := net.Listen("tcp", ":"+cfg.Ordering.Port)
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	s := grpc.NewServer()

	orderingHandler := handler.NewOrderingHandler(
		handler.NewRepository(db),
		handler.NewRedisSessions(redisClient, cfg.Ordering.CheckoutTTL),
		handler.NewRedisPublisher(redisClient),
		cfg.Ordering.PaymentURL,
	)
	rpc.RegisterOrderingServiceServer(s, orderingHandler)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)

	reflection.Register(s)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down ordering service...")
		healthServer.Shutdown()
		s.GracefulStop()
	}()

	log.Printf(" 🍱 Ordering service listening on :%s", cfg.Ordering.Port)
	if err := s.Serve(lis); err != nil {
		log.Fatalf("Failed to serve: %v", err)
	}
}
