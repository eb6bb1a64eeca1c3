// Package activity is the audit trail of staff and sales actions. The trail
// only grows, keeps a bounded window of the newest entries and is cleared
// wholesale by the administrative reset.
package activity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tehraja/backend/internal/domain/shared"
)

// DefaultRetention is the number of entries kept
const DefaultRetention = 100

// Action tags what happened
type Action string

const (
	ActionLogin           Action = "LOGIN"
	ActionLogout          Action = "LOGOUT"
	ActionCreateProduct   Action = "CREATE_PRODUCT"
	ActionUpdateProduct   Action = "UPDATE_PRODUCT"
	ActionDeleteProduct   Action = "DELETE_PRODUCT"
	ActionRestock         Action = "RESTOCK"
	ActionSetAvailability Action = "SET_AVAILABILITY"
	ActionSale            Action = "SALE"
	ActionOrderStatus     Action = "ORDER_STATUS"
	ActionResetData       Action = "RESET_DATA"
	ActionExportCSV       Action = "EXPORT_CSV"
	ActionExportPDF       Action = "EXPORT_PDF"
)

// IsValid reports whether a is a known action
func (a Action) IsValid() bool {
	switch a {
	case ActionLogin, ActionLogout, ActionCreateProduct, ActionUpdateProduct, ActionDeleteProduct,
		ActionRestock, ActionSetAvailability, ActionSale, ActionOrderStatus, ActionResetData,
		ActionExportCSV, ActionExportPDF:
		return true
	}
	return false
}

// Entry is one audit record
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Details   string    `json:"details"`
	Actor     string    `json:"actor"`
}

// NewEntry creates an entry stamped with the current time
func NewEntry(action Action, details, actor string) (Entry, error) {
	if !action.IsValid() {
		return Entry{}, shared.NewValidationError("Unknown activity action " + string(action))
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = "system"
	}
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Action:    action,
		Details:   strings.TrimSpace(details),
		Actor:     actor,
	}, nil
}

// Prepend puts e in front of entries and drops everything past retain
func Prepend(entries []Entry, e Entry, retain int) []Entry {
	if retain <= 0 {
		retain = DefaultRetention
	}
	out := make([]Entry, 0, min(len(entries)+1, retain))
	out = append(out, e)
	for _, existing := range entries {
		if len(out) == retain {
			break
		}
		out = append(out, existing)
	}
	return out
}
