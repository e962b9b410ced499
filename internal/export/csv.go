// Package export renders reports as CSV and stores them in object storage.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"saldo/internal/models"
	"saldo/internal/services"
)

const dateFormat = "2006-01-02"

// TransactionHeader is the header row of the transactions table.
var TransactionHeader = []string{
	"date", "description", "type", "category", "account_id", "amount",
	"payment_status", "due_date", "installment",
}

// GroupHeader is the header row of the group totals table.
var GroupHeader = []string{"group", "total_amount", "count"}

// WriteReport writes the report's transactions followed by a blank line and
// its group totals.
func WriteReport(w io.Writer, report *services.ReportResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(TransactionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range report.Transactions {
		if err := cw.Write(MarshalTransaction(&report.Transactions[i])); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := cw.Write(nil); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}
	if err := cw.Write(GroupHeader); err != nil {
		return fmt.Errorf("writing group header: %w", err)
	}
	for _, g := range report.Groups {
		if err := cw.Write([]string{g.Key, g.TotalAmount.StringFixed(2), strconv.Itoa(g.Count)}); err != nil {
			return fmt.Errorf("writing group %s: %w", g.Key, err)
		}
	}
	if err := cw.Write([]string{"total", report.Total.StringFixed(2), strconv.Itoa(len(report.Transactions))}); err != nil {
		return fmt.Errorf("writing total: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV record.
func MarshalTransaction(t *models.Transaction) []string {
	rec := []string{
		t.Date.UTC().Format(dateFormat),
		t.Description,
		string(t.Type),
		deref(t.Category),
		deref(t.AccountID),
		t.Amount.StringFixed(2),
		string(t.PaymentStatus),
		"",
		"",
	}
	if t.DueDate != nil {
		rec[7] = t.DueDate.UTC().Format(dateFormat)
	}
	if t.InstallmentCurrent != nil && t.InstallmentTotal != nil {
		rec[8] = fmt.Sprintf("%d/%d", *t.InstallmentCurrent, *t.InstallmentTotal)
	}
	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
