package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFileSnakeCaseHeader(t *testing.T) {
	path := writeCSV(t, `invoice_no,stock_code,description,quantity,invoice_date,unit_price,customer_id,country
536365,85123A,White Hanging Heart,6,2010-12-01 08:26:00,2.55,17850,United Kingdom
`)

	transactions, err := NewReader(nil).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	tx := transactions[0]
	assert.Equal(t, "536365", tx.InvoiceNo)
	assert.Equal(t, "85123A", tx.StockCode)
	assert.Equal(t, int64(6), tx.Quantity)
	assert.InDelta(t, 2.55, tx.UnitPrice, 1e-9)
	assert.Equal(t, time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC), tx.InvoiceDate)
}

func TestReadFileCamelCaseHeader(t *testing.T) {
	path := writeCSV(t, `InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country
536365,85123A,Heart,6,12/1/2010 08:26,2.55,17850,United Kingdom
`)

	transactions, err := NewReader(nil).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC), transactions[0].InvoiceDate)
}

func TestReadFileDropsIncompleteRows(t *testing.T) {
	path := writeCSV(t, `invoice_no,stock_code,quantity,invoice_date,unit_price
536365,85123A,6,2010-12-01 08:26:00,2.55
,85123A,6,2010-12-01 08:26:00,2.55
536367,,6,2010-12-01 08:26:00,2.55
536368,85123A,,2010-12-01 08:26:00,not-a-number
536369,85123A,6,,2.55
`)

	transactions, err := NewReader(nil).ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}

func TestReadFileMalformedTimestampAborts(t *testing.T) {
	path := writeCSV(t, `invoice_no,stock_code,quantity,invoice_date,unit_price
536365,85123A,6,2010-12-01 08:26:00,2.55
536366,85123A,6,yesterday,2.55
`)

	_, err := NewReader(nil).ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "malformed timestamp")
}

func TestReadFileMissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, `invoice_no,stock_code,quantity,unit_price
536365,85123A,6,2.55
`)

	_, err := NewReader(nil).ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice_date")
}

func TestReadFileSpreadsheetQuantity(t *testing.T) {
	path := writeCSV(t, `invoice_no,stock_code,quantity,invoice_date,unit_price
536365,85123A,8.0,2010-12-01,2.55
`)

	transactions, err := NewReader(nil).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, int64(8), transactions[0].Quantity)
}

func TestReadFileUnsupportedFormat(t *testing.T) {
	_, err := NewReader(nil).ReadFile("transactions.parquet")
	assert.Error(t, err)
}

func TestReadFileHeaderBOM(t *testing.T) {
	path := writeCSV(t, "\uFEFFinvoice_no,stock_code,description,quantity,invoice_date,unit_price,customer_id,country\n"+
		"536365,85123A,Heart,6,2010-12-01 08:26:00,2.55,17850,United Kingdom\n")

	transactions, err := NewReader(nil).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "536365", transactions[0].InvoiceNo)
}
