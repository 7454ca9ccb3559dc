package models

import "time"

// BusinessSettings is a singleton row.
type BusinessSettings struct {
	ID        string    `bson:"_id" json:"id"`
	OpenTime  string    `bson:"openTime" json:"open_time"`
	CloseTime string    `bson:"closeTime" json:"close_time"`
	IsOpen    bool      `bson:"isOpen" json:"is_open"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// BusinessSettingsPatch holds the fields a manager chose to change.
type BusinessSettingsPatch struct {
	OpenTime  *string
	CloseTime *string
	IsOpen    *bool
}

func (p BusinessSettingsPatch) Empty() bool {
	return p.OpenTime == nil && p.CloseTime == nil && p.IsOpen == nil
}

func (p BusinessSettingsPatch) Apply(s BusinessSettings) BusinessSettings {
	if p.OpenTime != nil {
		s.OpenTime = *p.OpenTime
	}
	if p.CloseTime != nil {
		s.CloseTime = *p.CloseTime
	}
	if p.IsOpen != nil {
		s.IsOpen = *p.IsOpen
	}
	return s
}

// DefaultBusinessSettings is materialized when no settings row exists.
func DefaultBusinessSettings() BusinessSettings {
	return BusinessSettings{
		OpenTime:  "08:00",
		CloseTime: "22:00",
		IsOpen:    true,
	}
}

// PickupTimeOption is one manager-curated pickup offset, e.g. "30分鐘後".
type PickupTimeOption struct {
	ID         string    `bson:"_id" json:"id"`
	OptionText string    `bson:"optionText" json:"option_text"`
	IsActive   bool      `bson:"isActive" json:"is_active"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
}

// DefaultPickupTimeTexts seeds an empty option table.
var DefaultPickupTimeTexts = []string{"30分鐘後", "1小時後", "2小時後"}
