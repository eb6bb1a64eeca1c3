package order

import (
	"strings"

	"github.com/tehraja/backend/internal/domain/shared"
)

// Status represents the lifecycle stage of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusCompleted || target == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// ParseStatus parses a status name case-insensitively
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.NewValidationError("Status must be one of pending, processing, completed, cancelled").
			WithDetail("field", "status")
	}
	return st, nil
}

// Channel tags where an order was taken
type Channel string

const (
	ChannelWeb     Channel = "web"
	ChannelCashier Channel = "cashier"
)

// IsValid checks if the channel is known
func (c Channel) IsValid() bool {
	return c == ChannelWeb || c == ChannelCashier
}
