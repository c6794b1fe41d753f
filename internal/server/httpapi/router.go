package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoice-pipeline/internal/logging"
)

// NewRouter builds the gin engine with all routes registered. Panics in
// handlers surface as a plain 500 so internals never leak to callers.
func NewRouter(h *Handler, logger logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered", "path", c.FullPath(), "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))

	api := r.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.POST("/events", h.ProcessEvent)

	invoices := api.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.POST("/import", h.ImportInvoices)
		invoices.DELETE("/:id", h.DeleteInvoice)
		invoices.POST("/:id/restore", h.RestoreInvoice)
	}

	return r
}
