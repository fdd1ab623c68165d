package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"mealplan-system/config"
	"mealplan-system/internal/clientstore"
	"mealplan-system/internal/gateway/clients"
	"mealplan-system/internal/gateway/events"
	"mealplan-system/internal/gateway/handlers"
	"mealplan-system/internal/gateway/middleware"
	"mealplan-system/internal/orders"
	"mealplan-system/internal/orderstore"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	grpcClients, err := clients.NewGRPCClients(cfg.Ordering.GRPCAddr)
	if err != nil {
		log.Printf("Warning: ordering service may be unavailable: %v", err)
	}
	defer grpcClients.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		orderingHandler *handlers.OrderingHTTPHandler
		api             *clients.OrderingAPI
		store           clientstore.Store
		redisClient     *redis.Client
		orderStore      = orderstore.New()
	)

	switch cfg.Gateway.ClientStore {
	case "memory":
		store = clientstore.NewMemoryStore()
	default:
		redisClient = config.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
		store = clientstore.NewRedisStore(redisClient, "", cfg.Gateway.ClientStoreTTL)
	}

	if grpcClients != nil {
		api = clients.NewOrderingAPI(grpcClients.Ordering, cfg.Gateway.DiscountTimeout)
		orderingHandler = handlers.NewOrderingHTTPHandler(api, store, orderStore, cfg.Gateway.HistoryLimit, cfg.Gateway.RequestTimeout)
		go watchOrders(ctx, redisClient, orderStore, api)
	}

	rateLimit, err := middleware.RateLimit(cfg.Gateway.RateLimit)
	if err != nil {
		log.Fatalf("Invalid rate limit %q: %v", cfg.Gateway.RateLimit, err)
	}

	r := gin.New()
	r.Use(middleware.CORS(cfg.Gateway.AllowedOrigins))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(rateLimit)
	r.Use(serviceHealthMiddleware(grpcClients))

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth([]byte(cfg.Auth.JWTSecret)))
	registerRoutes(protected, orderingHandler)

	r.GET("/health", healthCheckHandler(grpcClients))
	r.GET("/health/detailed", detailedHealthCheckHandler(grpcClients))

	srv := &http.Server{
		Addr:    ":" + cfg.Gateway.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Printf("Starting server on port %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Gateway shutdown: %v", err)
	}
}

// watchOrders keeps the admin order view current. Without redis there are
// no events, so the view is loaded once.
func watchOrders(ctx context.Context, redisClient *redis.Client, store *orderstore.Store, api *clients.OrderingAPI) {
	if redisClient == nil {
		list, err := api.AllUpcomingOrders(ctx)
		if err != nil {
			log.Printf("Initial order load failed: %v", err)
			return
		}
		store.Replace(list)
		return
	}

	subscriber := events.NewSubscriber(redisClient, store, api.AllUpcomingOrders)
	if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Order event subscriber stopped: %v", err)
	}
}

func registerRoutes(protected *gin.RouterGroup, h *handlers.OrderingHTTPHandler) {
	if h == nil {
		unavailable := serviceUnavailableHandler("Ordering service")
		protected.Any("/orders/*path", unavailable)
		protected.Any("/cart/*path", unavailable)
		protected.Any("/discount-code/*path", unavailable)
		protected.Any("/checkout/*path", unavailable)
		protected.Any("/user/*path", unavailable)
		protected.Any("/admin/*path", unavailable)
		return
	}

	adminOnly := middleware.RequireRole(orders.RoleAdmin, orders.RoleCompanyAdmin)

	ordersGroup := protected.Group("/orders")
	{
		ordersGroup.GET("/upcoming", h.UpcomingOrders)
		ordersGroup.GET("/delivered/:limit", h.DeliveredOrders)
		ordersGroup.PATCH("/deliver", adminOnly, h.DeliverOrders)
		ordersGroup.PATCH("/:id/archive", adminOnly, h.ArchiveOrder)
		ordersGroup.PATCH("/:id/cancel", h.CancelOrder)
		ordersGroup.POST("/create", h.PlaceOrder)
		ordersGroup.POST("/confirm", h.ConfirmCheckout)
	}

	discount := protected.Group("/discount-code")
	{
		discount.GET("", h.CurrentDiscount)
		discount.POST("/apply/:code", h.ApplyDiscountCode)
		discount.DELETE("", h.RemoveDiscountCode)
	}

	protected.GET("/checkout/summary", h.CheckoutSummary)

	cartGroup := protected.Group("/cart")
	{
		cartGroup.GET("", h.GetCart)
		cartGroup.POST("", h.AddCartItem)
		cartGroup.PATCH("/:lineId", h.UpdateCartItem)
		cartGroup.DELETE("/:lineId", h.RemoveCartItem)
		cartGroup.DELETE("", h.ClearCart)
	}

	protected.PATCH("/user/shift", h.ChangeShift)

	admin := protected.Group("/admin", adminOnly)
	{
		admin.GET("/orders/groups", h.OrderGroups)
		admin.GET("/orders/summary", h.OrderSummary)
		admin.GET("/orders/events", h.OrderEvents)
		admin.POST("/orders/reload", h.ReloadOrders)
		admin.GET("/filters", h.GetFilters)
		admin.PUT("/filters", h.SaveFilters)
	}
}

func serviceUnavailableHandler(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": serviceName + " is currently unavailable",
			"error":   "SERVICE_UNAVAILABLE",
		})
	}
}

func serviceHealthMiddleware(clients *clients.GRPCClients) gin.HandlerFunc {
	return func(c *gin.Context) {
		if clients != nil {
			c.Header("X-Ordering-Service", "available")
		} else {
			c.Header("X-Ordering-Service", "unavailable")
		}
		c.Next()
	}
}

func healthCheckHandler(clients *clients.GRPCClients) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		httpStatus := http.StatusOK

		unavailableServices := []string{}
		if clients == nil {
			unavailableServices = append(unavailableServices, "ordering")
		}

		if len(unavailableServices) > 0 {
			status = "degraded"
			httpStatus = http.StatusPartialContent
		}

		c.JSON(httpStatus, gin.H{
			"status":               status,
			"message":              "Server is running",
			"unavailable_services": unavailableServices,
			"timestamp":            time.Now(),
		})
	}
}

func detailedHealthCheckHandler(clients *clients.GRPCClients) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		services := map[string]interface{}{
			"ordering": checkServiceHealth(clients.IsOrderingServiceHealthy(ctx)),
		}

		overallStatus := "healthy"
		for _, service := range services {
			if serviceMap, ok := service.(map[string]interface{}); ok {
				if serviceMap["status"] != "healthy" {
					overallStatus = "degraded"
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"overall_status": overallStatus,
			"services":       services,
			"timestamp":      time.Now(),
		})
	}
}

func checkServiceHealth(isHealthy bool) map[string]interface{} {
	if !isHealthy {
		return map[string]interface{}{
			"status":  "unavailable",
			"message": "Service client not initialized or connection lost",
		}
	}
	return map[string]interface{}{
		"status":  "healthy",
		"message": "Service is responding",
	}
}
