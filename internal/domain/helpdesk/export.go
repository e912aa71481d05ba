package helpdesk

import (
	"encoding/csv"
	"io"
	"time"
)

var exportHeader = []string{"Ticket ID", "Subject", "Category", "Priority", "Status", "Created By", "Assigned To", "Created", "Last Update"}

// ExportFilename names the download after the export day.
func ExportFilename(now time.Time) string {
	return "tickets_export_" + now.Format("20060102") + ".csv"
}

// WriteCSV renders tickets as RFC 4180 CSV. Any field containing a comma,
// quote or newline is quoted, not just the subject.
func WriteCSV(w io.Writer, tickets []Ticket, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, t := range tickets {
		assigned := t.AssignedToName
		if t.AssignedTo == nil {
			assigned = UnassignedLabel
		}
		record := []string{
			t.TicketNumber,
			t.Subject,
			t.CategoryName,
			t.Priority,
			t.Status,
			t.CreatedByName,
			assigned,
			t.CreatedAt.In(loc).Format("2006-01-02"),
			t.UpdatedAt.In(loc).Format("2006-01-02 15:04"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
