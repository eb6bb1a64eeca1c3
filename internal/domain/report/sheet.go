// Package report turns order history into the daily sales sheet and the
// dashboard summary. Everything here is a pure function of its inputs.
package report

import (
	"time"

	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/shared/valueobject"
)

// Sheet headings
const (
	Title        = "Laporan Penjualan Harian"
	Tagline      = "Authentic Premium Tea | Est. 2024"
	TotalLabel   = "Total Omset"
	GuestName    = "Guest"
	timeLayout   = "15.04.05"
	printLayout  = "02/01/2006 15.04.05"
	orderColumn  = "Order"
	timeColumn   = "Waktu"
	cashColumn   = "Kasir"
	detailColumn = "Detail"
	totalColumn  = "Total"
)

// Columns are the sheet's column headings in order
var Columns = []string{orderColumn, timeColumn, cashColumn, detailColumn, totalColumn}

// Row is one order on the sheet
type Row struct {
	Order   string `json:"order"`
	Time    string `json:"time"`
	Cashier string `json:"cashier"`
	Detail  string `json:"detail"`
	Total   int64  `json:"total"`
}

// FormattedTotal renders the row total in rupiah
func (r Row) FormattedTotal() string {
	return valueobject.Rupiah(r.Total).Format()
}

// Cells returns the row as display strings in column order
func (r Row) Cells() []string {
	return []string{r.Order, r.Time, r.Cashier, r.Detail, r.FormattedTotal()}
}

// Sheet is the daily sales report
type Sheet struct {
	ShopName  string    `json:"shop_name"`
	Title     string    `json:"title"`
	PrintedAt time.Time `json:"printed_at"`
	Rows      []Row     `json:"rows"`
	Revenue   int64     `json:"revenue"`
}

// FormattedRevenue renders the sheet total in rupiah
func (s Sheet) FormattedRevenue() string {
	return valueobject.Rupiah(s.Revenue).Format()
}

// FormattedPrintedAt renders the print timestamp
func (s Sheet) FormattedPrintedAt() string {
	return s.PrintedAt.Format(printLayout)
}

// BuildSheet lays orders out in the given order. Times are shown in loc.
func BuildSheet(shopName string, orders []order.Order, loc *time.Location, printedAt time.Time) Sheet {
	if loc == nil {
		loc = time.UTC
	}
	sheet := Sheet{
		ShopName:  shopName,
		Title:     Title,
		PrintedAt: printedAt.In(loc),
		Rows:      make([]Row, 0, len(orders)),
	}
	for i := range orders {
		o := &orders[i]
		cashier := o.CustomerName
		if cashier == "" {
			cashier = GuestName
		}
		sheet.Rows = append(sheet.Rows, Row{
			Order:   o.ShortID(),
			Time:    o.CreatedAt.In(loc).Format(timeLayout),
			Cashier: cashier,
			Detail:  o.Detail(),
			Total:   o.Total,
		})
		sheet.Revenue += o.Total
	}
	return sheet
}
