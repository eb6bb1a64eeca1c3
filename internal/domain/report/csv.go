package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the sheet with a header row and a closing revenue row.
// Totals are written as plain integers so spreadsheets can sum them.
func WriteCSV(w io.Writer, s Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range s.Rows {
		record := []string{r.Order, r.Time, r.Cashier, r.Detail, strconv.FormatInt(r.Total, 10)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	if err := cw.Write([]string{TotalLabel, "", "", "", strconv.FormatInt(s.Revenue, 10)}); err != nil {
		return fmt.Errorf("failed to write csv footer: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
