package inventory

import "github.com/tehraja/backend/internal/domain/shared"

// StockLine is one product/quantity pair of a decrement batch
type StockLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// MergeLines validates a batch and folds repeated product ids into one line,
// keeping first-seen order.
func MergeLines(lines []StockLine) ([]StockLine, error) {
	if len(lines) == 0 {
		return nil, shared.NewValidationError("At least one stock line is required")
	}
	index := make(map[string]int, len(lines))
	merged := make([]StockLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, shared.NewValidationError("Stock line is missing a product id")
		}
		if l.Quantity <= 0 {
			return nil, shared.NewValidationError("Stock line quantity must be positive")
		}
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// ProductIDs returns the product ids of the batch in order
func ProductIDs(lines []StockLine) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	return ids
}
