package report

import (
	"time"

	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/shared/valueobject"
)

// Receipt wording
const (
	ReceiptTagline = "Authentic Tea & Blends"
	receiptRefLen  = 8
)

// ReceiptFooter is printed under the total
var ReceiptFooter = []string{
	"Terima kasih telah berbelanja!",
	"Simpan struk ini sebagai bukti pembayaran.",
	"Follow us @tehraja.id",
}

// ReceiptLine is one item on a receipt
type ReceiptLine struct {
	Quantity int
	Name     string
	Note     string
	Subtotal string
}

// Receipt is the customer's copy of one order, with every amount already
// formatted in rupiah
type Receipt struct {
	ShopName string
	Tagline  string
	OrderID  string
	OrderRef string
	IssuedAt string
	Customer string
	Table    string
	Lines    []ReceiptLine
	Total    string
	Footer   []string
}

// BuildReceipt lays out o for printing. Times are shown in loc.
func BuildReceipt(shopName string, o *order.Order, loc *time.Location) Receipt {
	if loc == nil {
		loc = time.UTC
	}
	customer := o.CustomerName
	if customer == "" {
		customer = GuestName
	}
	ref := o.ID
	if len(ref) > receiptRefLen {
		ref = ref[:receiptRefLen]
	}
	r := Receipt{
		ShopName: shopName,
		Tagline:  ReceiptTagline,
		OrderID:  o.ID,
		OrderRef: "#" + ref,
		IssuedAt: o.CreatedAt.In(loc).Format(printLayout),
		Customer: customer,
		Table:    o.Table,
		Lines:    make([]ReceiptLine, 0, len(o.Lines)),
		Total:    valueobject.Rupiah(o.Total).Format(),
		Footer:   ReceiptFooter,
	}
	for _, l := range o.Lines {
		r.Lines = append(r.Lines, ReceiptLine{
			Quantity: l.Quantity,
			Name:     l.Name,
			Note:     l.Note,
			Subtotal: valueobject.Rupiah(l.Subtotal()).Format(),
		})
	}
	return r
}
