package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pricing/internal/middleware"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pricing"
	"github.com/GTDGit/gtd_pricing/internal/service"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

// RuleService is the pricing rule surface used by PricingHandler.
type RuleService interface {
	Create(ctx context.Context, actor models.Actor, req service.CreatePricingRuleRequest) (*models.PricingRule, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.PricingRule, error)
	List(ctx context.Context, actor models.Actor, isActive *bool) ([]models.PricingRule, error)
	Update(ctx context.Context, actor models.Actor, id string, req service.UpdatePricingRuleRequest) (*models.PricingRule, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Preview(ctx context.Context, actor models.Actor, id string) (*pricing.PreviewResult, error)
	Apply(ctx context.Context, actor models.Actor, id string) (*service.BatchResult, error)
}

// BulkService runs batch price mutations.
type BulkService interface {
	ApplyAdjustment(ctx context.Context, actor models.Actor, req service.BulkUpdateRequest) (*service.BatchResult, error)
	SetCustomPrices(ctx context.Context, actor models.Actor, prices []service.CustomPrice) (*service.BatchResult, error)
	Revert(ctx context.Context, actor models.Actor, bulkUpdateID string) (*service.RevertResult, error)
}

// HistoryService reads the price ledger.
type HistoryService interface {
	ProductHistory(ctx context.Context, actor models.Actor, productID string) ([]models.PriceHistory, error)
	Recent(ctx context.Context, actor models.Actor, limit int) (*service.RecentChanges, error)
	Export(ctx context.Context, actor models.Actor, limit int) ([]byte, error)
}

// ConfigService reads and writes the singleton pricing config.
type ConfigService interface {
	Get(ctx context.Context, actor models.Actor) (*models.PricingConfig, error)
	Update(ctx context.Context, actor models.Actor, req service.UpdatePricingConfigRequest) (*models.PricingConfig, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PricingHandler serves /v1/admin/pricing.
type PricingHandler struct {
	rules   RuleService
	bulk    BulkService
	history HistoryService
	config  ConfigService
}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler(rules RuleService, bulk BulkService, history HistoryService, config ConfigService) *PricingHandler {
	return &PricingHandler{rules: rules, bulk: bulk, history: history, config: config}
}

// ListRules handles GET /v1/admin/pricing/rules
func (h *PricingHandler) ListRules(c *gin.Context) {
	var isActive *bool
	if v := c.Query("isActive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "isActive must be true or false")
			return
		}
		isActive = &b
	}

	rules, err := h.rules.List(c.Request.Context(), middleware.ActorFrom(c), isActive)
	if err != nil {
		respondError(c, err, "Failed to list pricing rules")
		return
	}
	utils.Success(c, http.StatusOK, "Pricing rules retrieved successfully", gin.H{"rules": rules})
}

// CreateRule handles POST /v1/admin/pricing/rules
func (h *PricingHandler) CreateRule(c *gin.Context) {
	var req service.CreatePricingRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.rules.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to create pricing rule")
		return
	}
	utils.Success(c, http.StatusCreated, "Pricing rule created", gin.H{"rule": rule})
}

// GetRule handles GET /v1/admin/pricing/rules/:id
func (h *PricingHandler) GetRule(c *gin.Context) {
	rule, err := h.rules.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get pricing rule")
		return
	}
	utils.Success(c, http.StatusOK, "Pricing rule retrieved successfully", gin.H{"rule": rule})
}

// UpdateRule handles PUT /v1/admin/pricing/rules/:id
func (h *PricingHandler) UpdateRule(c *gin.Context) {
	var req service.UpdatePricingRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.rules.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update pricing rule")
		return
	}
	utils.Success(c, http.StatusOK, "Pricing rule updated", gin.H{"rule": rule})
}

// DeleteRule handles DELETE /v1/admin/pricing/rules/:id
func (h *PricingHandler) DeleteRule(c *gin.Context) {
	if err := h.rules.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete pricing rule")
		return
	}
	utils.Success(c, http.StatusOK, "Pricing rule deleted", nil)
}

// PreviewRule handles POST /v1/admin/pricing/rules/:id/preview
func (h *PricingHandler) PreviewRule(c *gin.Context) {
	preview, err := h.rules.Preview(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to preview pricing rule")
		return
	}
	utils.Success(c, http.StatusOK, "Pricing rule preview", preview)
}

// ApplyRule handles POST /v1/admin/pricing/rules/:id/apply
func (h *PricingHandler) ApplyRule(c *gin.Context) {
	result, err := h.rules.Apply(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to apply pricing rule")
		return
	}
	utils.Success(c, http.StatusOK, fmt.Sprintf("Rule applied to %d products", result.UpdatedCount), result)
}

// GetConfig handles GET /v1/admin/pricing/config
func (h *PricingHandler) GetConfig(c *gin.Context) {
	cfg, err := h.config.Get(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to get pricing config")
		return
	}
	utils.Success(c, http.StatusOK, "Pricing config retrieved successfully", gin.H{"config": cfg})
}

// UpdateConfig handles PUT /v1/admin/pricing/config
func (h *PricingHandler) UpdateConfig(c *gin.Context) {
	var req service.UpdatePricingConfigRequest
	if !bindJSON(c, &req) {
		return
	}

	cfg, err := h.config.Update(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to update pricing config")
		return
	}
	utils.Success(c, http.StatusOK, "Pricing config updated", gin.H{"config": cfg})
}

// BulkUpdate handles POST /v1/admin/pricing/bulk/update
func (h *PricingHandler) BulkUpdate(c *gin.Context) {
	var req service.BulkUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bulk.ApplyAdjustment(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to update prices")
		return
	}
	utils.Success(c, http.StatusOK, fmt.Sprintf("Prices updated on %d products", result.UpdatedCount), result)
}

type customPricesRequest struct {
	Prices []service.CustomPrice `json:"prices"`
}

// BulkCustom handles POST /v1/admin/pricing/bulk/custom
func (h *PricingHandler) BulkCustom(c *gin.Context) {
	var req customPricesRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Prices) == 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "prices array is required: [{ productId, newPrice }, ...]")
		return
	}

	result, err := h.bulk.SetCustomPrices(c.Request.Context(), middleware.ActorFrom(c), req.Prices)
	if err != nil {
		respondError(c, err, "Failed to set custom prices")
		return
	}
	utils.Success(c, http.StatusOK, fmt.Sprintf("Custom prices set on %d products", result.UpdatedCount), result)
}

type revertRequest struct {
	BulkUpdateID string `json:"bulkUpdateId" binding:"required"`
}

// BulkRevert handles POST /v1/admin/pricing/bulk/revert
func (h *PricingHandler) BulkRevert(c *gin.Context) {
	var req revertRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bulk.Revert(c.Request.Context(), middleware.ActorFrom(c), req.BulkUpdateID)
	if err != nil {
		respondError(c, err, "Failed to revert prices")
		return
	}
	utils.Success(c, http.StatusOK, fmt.Sprintf("Reverted prices on %d products", result.RevertedCount), result)
}

// RecentChanges handles GET /v1/admin/pricing/history
func (h *PricingHandler) RecentChanges(c *gin.Context) {
	recent, err := h.history.Recent(c.Request.Context(), middleware.ActorFrom(c), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err, "Failed to get recent price changes")
		return
	}
	utils.Success(c, http.StatusOK, "Recent price changes retrieved successfully", recent)
}

// ExportHistory handles GET /v1/admin/pricing/history/export
func (h *PricingHandler) ExportHistory(c *gin.Context) {
	data, err := h.history.Export(c.Request.Context(), middleware.ActorFrom(c), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err, "Failed to export price history")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="price-history.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ProductHistory handles GET /v1/admin/pricing/history/:productId
func (h *PricingHandler) ProductHistory(c *gin.Context) {
	history, err := h.history.ProductHistory(c.Request.Context(), middleware.ActorFrom(c), c.Param("productId"))
	if err != nil {
		respondError(c, err, "Failed to get price history")
		return
	}
	utils.Success(c, http.StatusOK, "Price history retrieved successfully", gin.H{"history": history})
}

// queryInt reads a positive integer query parameter, returning 0 when absent
// or malformed so services fall back to their defaults.
func queryInt(c *gin.Context, key string) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
