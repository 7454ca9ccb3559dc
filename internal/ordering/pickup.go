package ordering

import (
	"strings"

	"storefront/internal/models"
)

// PickupReplacement is the outcome of a replace-all: every current option
// is retired and Created becomes the whole active set.
type PickupReplacement struct {
	Retired []models.PickupTimeOption
	Created []models.PickupTimeOption
}

// ReplacePickupOptions builds a fresh active option per distinct non-blank
// text. An empty texts list yields an empty set, which leaves customers with
// no valid pickup time; callers that must keep checkout usable should refuse
// that input themselves.
func ReplacePickupOptions(current []models.PickupTimeOption, texts []string) PickupReplacement {
	retired := make([]models.PickupTimeOption, len(current))
	for i, option := range current {
		option.IsActive = false
		retired[i] = option
	}

	seen := make(map[string]struct{}, len(texts))
	created := make([]models.PickupTimeOption, 0, len(texts))
	for _, raw := range texts {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		created = append(created, models.PickupTimeOption{
			OptionText: text,
			IsActive:   true,
		})
	}

	return PickupReplacement{Retired: retired, Created: created}
}
