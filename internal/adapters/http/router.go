package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appdispatch "github.com/vietcart/logistics/internal/application/dispatch"
	apporders "github.com/vietcart/logistics/internal/application/orders"
	"github.com/vietcart/logistics/internal/application/shippingfacade"
	apptracking "github.com/vietcart/logistics/internal/application/tracking"
	"github.com/vietcart/logistics/internal/adapters/metrics"
	"github.com/vietcart/logistics/internal/adapters/push"
	"github.com/vietcart/logistics/internal/domain/dispatch"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// Handlers bundles every HTTP-facing dependency.
type Handlers struct {
	orders     *apporders.Service
	facade     *shippingfacade.Facade
	tracking   *apptracking.Service
	dispatcher *appdispatch.Dispatcher
	shippers   dispatch.ShipperRepository
	hub        *push.Hub
	logger     *zap.Logger
}

// NewHandlers wires the HTTP handler set
func NewHandlers(
	orders *apporders.Service,
	facade *shippingfacade.Facade,
	tracking *apptracking.Service,
	dispatcher *appdispatch.Dispatcher,
	shippers dispatch.ShipperRepository,
	hub *push.Hub,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		orders:     orders,
		facade:     facade,
		tracking:   tracking,
		dispatcher: dispatcher,
		shippers:   shippers,
		hub:        hub,
		logger:     logger,
	}
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(h *Handlers, cfg *config.ServerConfig, httpMetrics *metrics.HTTPMetricsCollector, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ActorMiddleware())

	r.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics.IsEnabled() {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})))
	}

	// Carrier callbacks; rate limited, signature-checked inside the facade.
	webhooks := r.Group("/webhooks")
	webhooks.Use(WebhookRateLimit(cfg.WebhookRate, cfg.WebhookBurst))
	webhooks.POST("/:provider", h.carrierWebhook)

	api := r.Group("/api")

	// Public tracking lookup
	api.GET("/tracking/:number", h.getTracking)

	// Customer surface
	customer := api.Group("", RequireRole(shared.RoleCustomer))
	{
		customer.POST("/orders", h.placeOrder)
		customer.GET("/orders", h.listOrders)
		customer.GET("/orders/:id", h.getOrder)
		customer.POST("/orders/:id/cancel", h.cancelOrder)
		customer.POST("/sub-orders/:id/confirm-receipt", h.confirmReceipt)
		customer.POST("/sub-orders/:id/return", h.requestReturn)
		customer.GET("/sub-orders/:id/timeline", h.timeline)
		customer.GET("/rewards/balance", h.coinBalance)
		customer.POST("/shipping/fees", h.quoteFees)
	}

	// Partner surface
	partner := api.Group("/partner", RequireRole(shared.RolePartner))
	{
		partner.GET("/orders", h.listShopOrders)
		partner.POST("/sub-orders/:id/confirm", h.confirmSubOrder)
		partner.POST("/sub-orders/:id/process", h.startProcessing)
		partner.POST("/sub-orders/:id/pack", h.packSubOrder)
		partner.POST("/sub-orders/:id/cancel", h.cancelSubOrder)
		partner.POST("/sub-orders/:id/return/approve", h.approveReturn)
		partner.POST("/sub-orders/:id/return/reject", h.rejectReturn)
		partner.POST("/sub-orders/:id/return/received", h.markReturned)
		partner.POST("/sub-orders/:id/return/refund", h.refundReturned)
		partner.GET("/providers", h.listProviderConfigs)
		partner.PUT("/providers/:code", h.saveProviderConfig)
		partner.POST("/providers/:code/test", h.testProviderConnection)
	}

	// Shipper surface
	shipper := api.Group("/shipper", RequireRole(shared.RoleShipper))
	{
		shipper.POST("/presence", h.setPresence)
		shipper.POST("/location", h.ingestLocation)
		shipper.POST("/shipments/:id/progress", h.recordProgress)
		shipper.POST("/shipments/:id/cod", h.collectCOD)
		shipper.GET("/cod", h.listCODDue)
	}

	// Admin surface
	admin := api.Group("/admin", RequireRole(shared.RoleAdmin))
	{
		admin.POST("/shipments/:id/dispatch", h.retryDispatch)
		admin.GET("/shippers/:id/location", h.lastLocation)
		admin.GET("/shippers/:id/trace", h.locationTrace)
	}

	// Live updates over websocket
	r.GET("/ws", h.subscribe)

	return r
}

// retryDispatch lets an operator re-run assignment on an unassigned
// shipment.
func (h *Handlers) retryDispatch(c *gin.Context) {
	a, err := h.dispatcher.AssignShipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, a)
}

// subscribe upgrades to a websocket and follows the topics named in the
// query string: ?shipment=ID&order=ID&shipper=ID, repeatable.
func (h *Handlers) subscribe(c *gin.Context) {
	var topics []string
	for _, id := range c.QueryArray("shipment") {
		topics = append(topics, push.ShipmentTopic(id))
	}
	for _, id := range c.QueryArray("order") {
		topics = append(topics, push.OrderTopic(id))
	}
	for _, id := range c.QueryArray("shipper") {
		topics = append(topics, push.ShipperTopic(id))
	}
	if len(topics) == 0 {
		respondValidation(c, true, "topics", "at least one shipment, order, or shipper id is required")
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, topics); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}
