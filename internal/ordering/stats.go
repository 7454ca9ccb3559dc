package ordering

import (
	"time"

	"storefront/internal/models"
)

// DailyStats folds the orders created on ref's calendar day, in ref's
// location. The fold only counts and sums, so input order does not matter.
func DailyStats(orders []models.Order, ref time.Time) models.DailyStats {
	loc := ref.Location()
	year, month, day := ref.Date()

	stats := models.DailyStats{
		Date:    ref.Format(time.DateOnly),
		Revenue: models.ZeroMoney,
	}
	for _, order := range orders {
		y, m, d := order.CreatedAt.In(loc).Date()
		if y != year || m != month || d != day {
			continue
		}

		stats.Count++
		stats.Revenue = stats.Revenue.Add(order.Total)
		switch order.Status {
		case models.StatusPending:
			stats.PendingCount++
		case models.StatusCompleted:
			stats.CompletedCount++
		}
	}
	return stats
}
