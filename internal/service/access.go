package service

import (
	"github.com/google/uuid"

	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

// requireAdmin is the single capability check of the pricing engine. Every
// admin operation calls it before touching storage.
func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin() {
		return utils.ErrForbidden
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

func strPtr(s string) *string {
	return &s
}
