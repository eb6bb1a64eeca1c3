package report

import (
	"time"

	"github.com/tehraja/backend/internal/domain/report"
)

// ExportRequest narrows the orders on a sales sheet. Without a range the
// sheet covers every order on record.
type ExportRequest struct {
	From             *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To               *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	IncludeCancelled bool       `form:"include_cancelled"`
}

// Export is a rendered report file
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	// ArchiveURL is set when the file was also copied to object storage
	ArchiveURL string
}

// SheetResponse is the sales sheet as JSON
type SheetResponse struct {
	report.Sheet
	Columns          []string `json:"columns"`
	FormattedRevenue string   `json:"formatted_revenue"`
}
