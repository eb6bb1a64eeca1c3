package activity

import "github.com/tehraja/backend/internal/domain/shared"

// AggregateTypeLog is the aggregate type for the activity trail
const AggregateTypeLog = "ActivityLog"

// Event type constants
const (
	EventTypeEntryAppended = "ActivityEntryAppended"
	EventTypeDataReset     = "DataReset"
)

// EntryAppendedEvent is published after an entry is stored
type EntryAppendedEvent struct {
	shared.BaseDomainEvent
	Entry Entry `json:"entry"`
}

// NewEntryAppendedEvent creates a new EntryAppendedEvent
func NewEntryAppendedEvent(e Entry) *EntryAppendedEvent {
	return &EntryAppendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntryAppended, AggregateTypeLog, e.ID),
		Entry:           e,
	}
}

// DataResetEvent is published after orders and logs were purged
type DataResetEvent struct {
	shared.BaseDomainEvent
	OrdersDeleted int64  `json:"orders_deleted"`
	LogsDeleted   int64  `json:"logs_deleted"`
	Actor         string `json:"actor"`
}

// NewDataResetEvent creates a new DataResetEvent
func NewDataResetEvent(orders, logs int64, actor string) *DataResetEvent {
	return &DataResetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataReset, AggregateTypeLog, "all"),
		OrdersDeleted:   orders,
		LogsDeleted:     logs,
		Actor:           actor,
	}
}
