package pricing

import (
	"time"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// SaleStatus computes the lifecycle state of s at now. The admin toggle
// wins over the time window.
func SaleStatus(s *models.Sale, now time.Time) models.SaleStatus {
	if !s.IsActive {
		return models.SaleStatusInactive
	}
	if now.Before(s.StartsAt) {
		return models.SaleStatusUpcoming
	}
	if now.After(s.EndsAt) {
		return models.SaleStatusExpired
	}
	return models.SaleStatusActive
}

// Countdown splits the time left until endsAt into whole units.
func Countdown(endsAt, now time.Time) models.Countdown {
	diff := endsAt.Sub(now).Milliseconds()
	if diff <= 0 {
		return models.Countdown{Expired: true}
	}

	return models.Countdown{
		Days:    diff / msPerDay,
		Hours:   (diff % msPerDay) / msPerHour,
		Minutes: (diff % msPerHour) / msPerMinute,
		Seconds: (diff % msPerMinute) / msPerSecond,
	}
}
