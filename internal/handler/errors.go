package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pricing/internal/utils"
)

var notFoundErrors = []error{
	utils.ErrRuleNotFound,
	utils.ErrSaleNotFound,
	utils.ErrBulkUpdateNotFound,
	utils.ErrProductNotFound,
}

// respondError maps service errors onto the response envelope. Anything
// unrecognised is logged and reported as INTERNAL_ERROR with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", verr.Message)
		return
	case errors.Is(err, utils.ErrValidation):
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	case errors.Is(err, utils.ErrForbidden):
		utils.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
		return
	case errors.Is(err, utils.ErrAlreadyReverted):
		utils.Error(c, http.StatusConflict, "ALREADY_REVERTED", "This bulk update has already been reverted")
		return
	case errors.Is(err, utils.ErrPriceConflict):
		utils.Error(c, http.StatusConflict, "PRICE_CONFLICT", "Price changed concurrently, retry the request")
		return
	}

	for _, nf := range notFoundErrors {
		if errors.Is(err, nf) {
			utils.Error(c, http.StatusNotFound, nf.Error(), notFoundMessage(nf))
			return
		}
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
	utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}

func notFoundMessage(err error) string {
	switch err {
	case utils.ErrRuleNotFound:
		return "Pricing rule not found"
	case utils.ErrSaleNotFound:
		return "Sale not found"
	case utils.ErrBulkUpdateNotFound:
		return "Bulk update not found"
	default:
		return "Product not found"
	}
}

// bindJSON decodes the body and writes a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return false
	}
	return true
}
