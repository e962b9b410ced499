package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/models"
	"saldo/internal/services"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleReport() *services.ReportResult {
	food := "Food"
	acct := "acc-1"
	cur, total := 1, 3
	due := day(2024, 1, 20)
	rows := []models.Transaction{
		{Description: "Market, downtown", Amount: decimal.RequireFromString("-45.1"), Date: day(2024, 1, 10), Type: models.TransactionTypeExpense, Category: &food, AccountID: &acct, PaymentStatus: models.PaymentStatusPaid},
		{Description: "Laptop", Amount: decimal.RequireFromString("-33.33"), Date: day(2024, 1, 15), Type: models.TransactionTypeExpense, InstallmentCurrent: &cur, InstallmentTotal: &total, DueDate: &due, PaymentStatus: models.PaymentStatusPending},
	}
	return &services.ReportResult{
		Type:         services.ReportTypeExpense,
		StartDate:    day(2024, 1, 1),
		EndDate:      day(2024, 1, 31),
		GroupBy:      services.GroupByCategory,
		Groups:       services.GroupTransactions(rows, services.GroupByCategory),
		Total:        decimal.RequireFromString("-78.43"),
		Transactions: rows,
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport()))

	want := strings.Join([]string{
		"date,description,type,category,account_id,amount,payment_status,due_date,installment",
		`2024-01-10,"Market, downtown",expense,Food,acc-1,-45.10,paid,,`,
		"2024-01-15,Laptop,expense,,,-33.33,pending,2024-01-20,1/3",
		"",
		"group,total_amount,count",
		"Food,-45.10,1",
		"uncategorized,-33.33,1",
		"total,-78.43,2",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

type memUploader struct {
	name        string
	contentType string
	body        string
	err         error
}

func (m *memUploader) Upload(_ context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.name, m.contentType, m.body = objectName, contentType, string(data)
	return "mem://" + objectName, nil
}

func TestExporterUpload(t *testing.T) {
	up := &memUploader{}
	e := NewExporter(up)
	e.now = func() time.Time { return time.Date(2024, 2, 1, 13, 4, 5, 0, time.UTC) }

	uri, err := e.Upload(context.Background(), "user-1", sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "reports/user-1/2024-01-01_2024-01-31_expense_by-category_20240201T130405Z.csv", up.name)
	assert.Equal(t, "mem://"+up.name, uri)
	assert.Equal(t, "text/csv", up.contentType)
	assert.True(t, strings.HasPrefix(up.body, "date,description"))
}

func TestExporterDisabled(t *testing.T) {
	var nilExporter *Exporter
	assert.False(t, nilExporter.Enabled())

	e := NewExporter(nil)
	assert.False(t, e.Enabled())
	_, err := e.Upload(context.Background(), "u", sampleReport())
	assert.Error(t, err)
}

func TestExporterUploadError(t *testing.T) {
	e := NewExporter(&memUploader{err: errors.New("bucket missing")})
	_, err := e.Upload(context.Background(), "u", sampleReport())
	assert.EqualError(t, err, "bucket missing")
}
