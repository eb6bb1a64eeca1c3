package models

import (
	"time"

	"github.com/tehraja/backend/internal/domain/activity"
)

// ActivityEntryModel is one row of the activity log. Seq gives a total order
// that survives identical timestamps.
type ActivityEntryModel struct {
	Seq        int64           `gorm:"primaryKey;autoIncrement"`
	ID         string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	OccurredAt time.Time       `gorm:"not null"`
	Action     activity.Action `gorm:"type:varchar(32);not null"`
	Details    string          `gorm:"type:text"`
	Actor      string          `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (ActivityEntryModel) TableName() string {
	return "activity_logs"
}

// ToDomain converts the row to a domain entry
func (m *ActivityEntryModel) ToDomain() activity.Entry {
	return activity.Entry{
		ID:        m.ID,
		Timestamp: m.OccurredAt,
		Action:    m.Action,
		Details:   m.Details,
		Actor:     m.Actor,
	}
}

// ActivityEntryModelFromDomain creates a row from a domain entry
func ActivityEntryModelFromDomain(e activity.Entry) *ActivityEntryModel {
	return &ActivityEntryModel{
		ID:         e.ID,
		OccurredAt: e.Timestamp,
		Action:     e.Action,
		Details:    e.Details,
		Actor:      e.Actor,
	}
}

// All returns every model for AutoMigrate
func All() []any {
	return []any{&ProductModel{}, &OrderModel{}, &ActivityEntryModel{}}
}
