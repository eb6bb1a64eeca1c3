// Package messaging hands placed orders off to the shop's WhatsApp chat.
// The customer's device opens a wa.me deep link carrying a plain-text
// summary of the order.
package messaging

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/shared/valueobject"
)

const (
	waBaseURL = "https://wa.me/"
	separator = "----------------"
)

// WhatsAppHandoff builds order summaries addressed to the shop's number
type WhatsAppHandoff struct {
	shopName string
	number   string
}

// NewWhatsAppHandoff creates a handoff for the given shop. Non-digit
// characters are stripped from number.
func NewWhatsAppHandoff(shopName, number string) (*WhatsAppHandoff, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return nil, fmt.Errorf("whatsapp number %q has no digits", number)
	}
	return &WhatsAppHandoff{shopName: strings.ToUpper(shopName), number: digits}, nil
}

// Prepare renders the summary and deep link for o
func (w *WhatsAppHandoff) Prepare(ctx context.Context, o *order.Order) (order.Handoff, error) {
	if o == nil || len(o.Lines) == 0 {
		return order.Handoff{}, fmt.Errorf("order has no lines")
	}
	text := w.Message(o)
	return order.Handoff{
		Text: text,
		URL:  waBaseURL + w.number + "?text=" + url.QueryEscape(text),
	}, nil
}

var _ order.HandoffPreparer = (*WhatsAppHandoff)(nil)

// Message renders the plain-text order summary
func (w *WhatsAppHandoff) Message(o *order.Order) string {
	table := o.Table
	if table == "" {
		table = order.DefaultTable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*NEW ORDER - %s*\n", w.shopName)
	fmt.Fprintf(&b, "Name: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "Table: %s\n", table)
	b.WriteString(separator + "\n")
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "%dx %s (%s)\n", l.Quantity, l.Name, valueobject.Rupiah(l.Subtotal()).Format())
		if l.Note != "" {
			fmt.Fprintf(&b, "   Note: %s\n", l.Note)
		}
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Total: %s\n", valueobject.Rupiah(o.Total).Format())
	b.WriteString("Please process my order. Thank you!")
	return b.String()
}
