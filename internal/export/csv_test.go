package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccube-expense/ccube-expense/internal/expense"
	"github.com/ccube-expense/ccube-expense/internal/project"
)

func testRegistry(t *testing.T) *project.Registry {
	t.Helper()
	r := project.NewRegistry()
	require.NoError(t, r.Register(project.Project{
		ID:                "p1",
		Code:              "113-0001",
		Name:              "Sensor Grant",
		Type:              project.TypeGrant,
		Budget:            100000,
		AllowedCategories: []string{"office", "travel"},
	}))
	return r
}

func TestWriteCSV(t *testing.T) {
	w := NewWriter(testRegistry(t))

	claims := []expense.Expense{
		{
			ID:            "e1",
			ProjectID:     "p1",
			Category:      "office",
			Date:          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			InvoiceNumber: "AB-12345678",
			PaymentMethod: expense.PaymentAdvance,
			PayerName:     "Research Assistant",
			Items: []expense.InvoiceItem{
				{Name: "toner", UnitPrice: 1200, Quantity: 2, Amount: 2400},
				{Name: "paper", UnitPrice: 100, Quantity: 6, Amount: 600},
			},
			TotalAmount: 3000,
			Status:      expense.StatusSchoolPaid,
		},
		{
			ID:                      "e2",
			ProjectID:               "p1",
			Category:                "travel",
			Date:                    time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			PaymentMethod:           expense.PaymentDirect,
			VendorTaxID:             "12345678",
			Items:                   []expense.InvoiceItem{{Name: "flight", UnitPrice: 18000, Quantity: 1, Amount: 18000}},
			TotalAmount:             18000,
			Status:                  expense.StatusSubmitted,
			RequiresPurchaseRequest: true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, claims))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, header, records[0])

	first := records[1]
	require.Equal(t, "e1", first[0])
	require.Equal(t, "2024-03-15", first[1])
	require.Equal(t, "113-0001", first[2])
	require.Equal(t, "Sensor Grant", first[3])
	require.Equal(t, expense.StatusLabels[expense.StatusSchoolPaid], first[5])
	require.Equal(t, "ADVANCE", first[6])
	require.Equal(t, "Research Assistant", first[7])
	require.Equal(t, "AB-12345678", first[8])
	require.Equal(t, "toner x2 @1200.00; paper x6 @100.00", first[9])
	require.Equal(t, "3,000.00", first[10])
	require.Equal(t, "false", first[11])

	second := records[2]
	// Direct payment exports the vendor tax id as payee.
	require.Equal(t, "12345678", second[7])
	require.Equal(t, "18,000.00", second[10])
	require.Equal(t, "true", second[11])
}

func TestWriteCSVUnknownProjectKeepsID(t *testing.T) {
	w := NewWriter(testRegistry(t))

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, []expense.Expense{{
		ID:            "e1",
		ProjectID:     "deleted",
		Category:      "office",
		PaymentMethod: expense.PaymentAdvance,
		Status:        expense.StatusSubmitted,
	}}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, "deleted", records[1][2])
	require.Empty(t, records[1][3])
}

func TestWriteCSVUsesCRLF(t *testing.T) {
	w := NewWriter(testRegistry(t))

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, nil))
	require.True(t, strings.HasSuffix(buf.String(), "\r\n"))
}
