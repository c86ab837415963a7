package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pricing/internal/middleware"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/service"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

// SaleService is the sale lifecycle surface used by SaleHandler.
type SaleService interface {
	Create(ctx context.Context, actor models.Actor, req service.CreateSaleRequest) (*service.SaleView, error)
	Get(ctx context.Context, actor models.Actor, id string) (*service.SaleView, error)
	List(ctx context.Context, actor models.Actor, f service.SaleListFilter) ([]service.SaleView, int, error)
	Update(ctx context.Context, actor models.Actor, id string, req service.UpdateSaleRequest) (*service.SaleView, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Activate(ctx context.Context, actor models.Actor, id string) (*service.SaleView, error)
	Deactivate(ctx context.Context, actor models.Actor, id string) (*service.SaleView, error)
	ActiveSales(ctx context.Context) ([]service.ActiveSale, error)
	Countdown(ctx context.Context, id string) (*service.SaleCountdown, error)
}

// SaleHandler serves /v1/admin/sales and the public /v1/sales endpoints.
type SaleHandler struct {
	sales SaleService
}

// NewSaleHandler constructs a SaleHandler.
func NewSaleHandler(sales SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// ListSales handles GET /v1/admin/sales
func (h *SaleHandler) ListSales(c *gin.Context) {
	f := service.SaleListFilter{
		Status: models.SaleStatus(c.Query("status")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	sales, total, err := h.sales.List(c.Request.Context(), middleware.ActorFrom(c), f)
	if err != nil {
		respondError(c, err, "Failed to list sales")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Sales retrieved successfully", gin.H{
		"sales": sales,
	}, f.Page, f.Limit, total)
}

// GetSale handles GET /v1/admin/sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	sale, err := h.sales.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get sale")
		return
	}
	utils.Success(c, http.StatusOK, "Sale retrieved successfully", gin.H{"sale": sale})
}

// CreateSale handles POST /v1/admin/sales
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.sales.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to create sale")
		return
	}
	utils.Success(c, http.StatusCreated, "Sale created", gin.H{"sale": sale})
}

// UpdateSale handles PUT /v1/admin/sales/:id
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	var req service.UpdateSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.sales.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update sale")
		return
	}
	utils.Success(c, http.StatusOK, "Sale updated", gin.H{"sale": sale})
}

// DeleteSale handles DELETE /v1/admin/sales/:id
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	if err := h.sales.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete sale")
		return
	}
	utils.Success(c, http.StatusOK, "Sale deleted", nil)
}

// ActivateSale handles POST /v1/admin/sales/:id/activate
func (h *SaleHandler) ActivateSale(c *gin.Context) {
	sale, err := h.sales.Activate(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to activate sale")
		return
	}
	utils.Success(c, http.StatusOK, "Sale activated", gin.H{"sale": sale})
}

// DeactivateSale handles POST /v1/admin/sales/:id/deactivate
func (h *SaleHandler) DeactivateSale(c *gin.Context) {
	sale, err := h.sales.Deactivate(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to deactivate sale")
		return
	}
	utils.Success(c, http.StatusOK, "Sale deactivated", gin.H{"sale": sale})
}

// ActiveSales handles GET /v1/sales/active (public)
func (h *SaleHandler) ActiveSales(c *gin.Context) {
	sales, err := h.sales.ActiveSales(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get active sales")
		return
	}
	utils.Success(c, http.StatusOK, "Active sales retrieved successfully", gin.H{"sales": sales})
}

// Countdown handles GET /v1/sales/countdown/:id (public)
func (h *SaleHandler) Countdown(c *gin.Context) {
	countdown, err := h.sales.Countdown(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get sale countdown")
		return
	}
	utils.Success(c, http.StatusOK, "Sale countdown retrieved successfully", countdown)
}
