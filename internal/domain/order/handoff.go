package order

import "context"

// Handoff is the human-readable summary of a placed order and the deep link
// that opens it in the shop's chat
type Handoff struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// HandoffPreparer builds the handoff for a placed order. A failure never
// affects the order itself.
type HandoffPreparer interface {
	Prepare(ctx context.Context, o *Order) (Handoff, error)
}
