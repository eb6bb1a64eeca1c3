package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/order"
	"github.com/tehraja/backend/internal/domain/shared/valueobject"
)

// TrendDays is the length of the daily revenue series
const TrendDays = 7

// DailyRevenue is one day of the revenue series
type DailyRevenue struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Orders  int    `json:"orders"`
	Cups    int    `json:"cups"`
	Revenue int64  `json:"revenue"`
}

// ProductSales is how much of one product was sold
type ProductSales struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

// LowStockItem is a product at or under its threshold
type LowStockItem struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	MinThreshold int    `json:"min_stock_threshold"`
	Available    bool   `json:"is_available"`
}

// Summary feeds the admin dashboard
type Summary struct {
	Revenue      valueobject.Money    `json:"revenue"`
	OrderCount   int                  `json:"order_count"`
	ItemsSold    int                  `json:"items_sold"`
	AverageOrder valueobject.Money    `json:"average_order"`
	StatusCounts map[order.Status]int `json:"status_counts"`
	Daily        []DailyRevenue       `json:"daily"`
	Popularity   []ProductSales       `json:"popularity"`
	LowStock     []LowStockItem       `json:"low_stock"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// Summarize aggregates orders and the current catalog. Cancelled orders are
// counted by status but excluded from revenue and popularity. The daily
// series covers the TrendDays calendar days ending on now, in loc.
func Summarize(orders []order.Order, products []catalog.Product, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	s := Summary{
		StatusCounts: make(map[order.Status]int),
		Daily:        make([]DailyRevenue, TrendDays),
		Popularity:   []ProductSales{},
		LowStock:     []LowStockItem{},
		GeneratedAt:  now,
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	first := today.AddDate(0, 0, -(TrendDays - 1))
	dayIndex := make(map[string]int, TrendDays)
	for i := range TrendDays {
		d := first.AddDate(0, 0, i)
		key := d.Format(time.DateOnly)
		s.Daily[i] = DailyRevenue{Date: key, Label: d.Weekday().String()[:3]}
		dayIndex[key] = i
	}

	var revenue int64
	sales := make(map[string]*ProductSales)
	for i := range orders {
		o := &orders[i]
		s.StatusCounts[o.Status]++
		if o.Status == order.StatusCancelled {
			continue
		}
		s.OrderCount++
		revenue += o.Total
		items := o.ItemCount()
		s.ItemsSold += items

		if idx, ok := dayIndex[o.CreatedAt.In(loc).Format(time.DateOnly)]; ok {
			s.Daily[idx].Orders++
			s.Daily[idx].Cups += items
			s.Daily[idx].Revenue += o.Total
		}

		for _, l := range o.Lines {
			ps, ok := sales[l.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: l.ProductID, Name: l.Name}
				sales[l.ProductID] = ps
			}
			ps.Quantity += l.Quantity
			ps.Revenue += l.Subtotal()
		}
	}

	s.Revenue = valueobject.Rupiah(revenue)
	s.AverageOrder = valueobject.Rupiah(0)
	if s.OrderCount > 0 {
		avg := decimal.NewFromInt(revenue).Div(decimal.NewFromInt(int64(s.OrderCount))).Round(0)
		s.AverageOrder = valueobject.Rupiah(avg.IntPart())
	}

	for _, ps := range sales {
		s.Popularity = append(s.Popularity, *ps)
	}
	slices.SortFunc(s.Popularity, func(a, b ProductSales) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	for i := range products {
		p := &products[i]
		if p.IsDeleted() || !p.Level.IsLowStock() {
			continue
		}
		s.LowStock = append(s.LowStock, LowStockItem{
			ProductID:    p.ID,
			Name:         p.Name,
			Stock:        p.Stock(),
			MinThreshold: p.Level.MinThreshold(),
			Available:    p.IsAvailable(),
		})
	}
	return s
}
