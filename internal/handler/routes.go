package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *HealthHandler
	Pricing *PricingHandler
	Sale    *SaleHandler
	SSE     *SSEHandler
}

// RegisterRoutes mounts the admin pricing and sale routes behind auth and
// the public sale routes behind publicLimit.
func RegisterRoutes(router *gin.Engine, h *Handlers, auth, publicLimit gin.HandlerFunc) {
	router.GET("/v1/health", h.Health.GetHealth)

	// EventSource cannot send headers; the stream checks its token itself.
	if h.SSE != nil {
		router.GET("/v1/admin/pricing/events", h.SSE.Stream)
	}

	public := router.Group("/v1/sales")
	public.Use(publicLimit)
	{
		public.GET("/active", h.Sale.ActiveSales)
		public.GET("/countdown/:id", h.Sale.Countdown)
	}

	pricing := router.Group("/v1/admin/pricing")
	pricing.Use(auth)
	{
		// Rules
		pricing.GET("/rules", h.Pricing.ListRules)
		pricing.POST("/rules", h.Pricing.CreateRule)
		pricing.GET("/rules/:id", h.Pricing.GetRule)
		pricing.PUT("/rules/:id", h.Pricing.UpdateRule)
		pricing.DELETE("/rules/:id", h.Pricing.DeleteRule)
		pricing.POST("/rules/:id/preview", h.Pricing.PreviewRule)
		pricing.POST("/rules/:id/apply", h.Pricing.ApplyRule)

		// Config
		pricing.GET("/config", h.Pricing.GetConfig)
		pricing.PUT("/config", h.Pricing.UpdateConfig)

		// Bulk operations
		pricing.POST("/bulk/update", h.Pricing.BulkUpdate)
		pricing.POST("/bulk/custom", h.Pricing.BulkCustom)
		pricing.POST("/bulk/revert", h.Pricing.BulkRevert)

		// History
		pricing.GET("/history", h.Pricing.RecentChanges)
		pricing.GET("/history/export", h.Pricing.ExportHistory)
		pricing.GET("/history/:productId", h.Pricing.ProductHistory)
	}

	sales := router.Group("/v1/admin/sales")
	sales.Use(auth)
	{
		sales.GET("", h.Sale.ListSales)
		sales.POST("", h.Sale.CreateSale)
		sales.GET("/:id", h.Sale.GetSale)
		sales.PUT("/:id", h.Sale.UpdateSale)
		sales.DELETE("/:id", h.Sale.DeleteSale)
		sales.POST("/:id/activate", h.Sale.ActivateSale)
		sales.POST("/:id/deactivate", h.Sale.DeactivateSale)
	}
}
