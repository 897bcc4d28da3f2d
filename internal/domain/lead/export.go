package lead

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

var csvHeader = []string{
	"Name", "Company", "Phone", "Email", "Status", "Service", "Price",
	"Requirements", "Callback Date", "Callback Time", "Rejection Reason",
}

// WriteCSV writes one header row and one row per lead. Missing values are empty.
func WriteCSV(w io.Writer, leads []Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range leads {
		var callbackDate string
		if l.CallbackDate != nil {
			callbackDate = l.CallbackDate.Format("2006-01-02")
		}
		row := []string{
			l.Name,
			l.Company,
			l.Phone,
			l.Email,
			string(l.Status),
			deref(l.Service),
			deref(l.Price),
			deref(l.Requirements),
			callbackDate,
			deref(l.CallbackTime),
			deref(l.RejectionReason),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName is leads_<filter>_<yyyy-MM-dd>.csv.
func ExportFileName(filter Filter, now time.Time) string {
	if filter == "" {
		filter = FilterAll
	}
	return fmt.Sprintf("leads_%s_%s.csv", filter, now.Format("2006-01-02"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
