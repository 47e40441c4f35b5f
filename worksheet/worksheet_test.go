package worksheet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/worksheet"
)

// =============================================================================
// SPLIT / CALCULATE
// =============================================================================

func TestSplit_PreservesOrderAndDropsEmptyRows(t *testing.T) {
	rows := []worksheet.Row{
		{InvoiceNumber: "I1", InvoiceAmount: "100", DueDate: "20-03-2025"},
		{PaymentDocNo: "P1", PaymentAmount: "60", PaymentDate: "10-03-2025"},
		{Description: "note only"},
		{InvoiceNumber: "I2", InvoiceAmount: "50", PaymentDocNo: "P2", PaymentAmount: "90"},
		{InvoiceAmount: "abc", PaymentAmount: "-5"},
	}

	invoices, payments := worksheet.Split(rows)

	require.Len(t, invoices, 2)
	assert.Equal(t, "INV-1", invoices[0].ID)
	assert.Equal(t, "I1", invoices[0].InvoiceNumber)
	assert.Equal(t, "INV-4", invoices[1].ID)

	require.Len(t, payments, 2)
	assert.Equal(t, "PAY-2", payments[0].ID)
	assert.Equal(t, "PAY-4", payments[1].ID)
	assert.Equal(t, "P2", payments[1].PaymentDocNo)
}

func TestCalculate_FullMatchRow(t *testing.T) {
	rows := []worksheet.Row{{
		ProductCode:   "SKU-1",
		InvoiceNumber: "INV/001",
		InvoiceDate:   "2025-03-01",
		DueDate:       "20-03-2025",
		Quantity:      "51",
		UnitPrice:     "5",
		InvoiceAmount: "255.00",
		PaymentDocNo:  "RCPT-9",
		PaymentDate:   "10-03-2025",
		PaymentAmount: "255.00",
		DiscountRate:  "2",
	}}

	res := worksheet.Calculate(rows)

	assert.Equal(t, 1, res.InputRows)
	assert.Equal(t, 1, res.InvoiceCount)
	assert.Equal(t, 1, res.PaymentCount)
	require.Len(t, res.Records, 1)

	out := res.Rows()[0]
	assert.Equal(t, "Full Match", out.Note)
	assert.Equal(t, "10", out.DaysDifference)
	assert.Equal(t, "5.10", out.DiscountAmount)
	assert.Equal(t, "249.90", out.FinalPayment)
	assert.Equal(t, "51.00", out.ProportionateQuantity)
	assert.Equal(t, "255.00", out.InvoiceAmount)
	assert.Equal(t, "255.00", out.PaymentAmount)
	assert.Equal(t, "01-03-2025", out.InvoiceDate)
	assert.Equal(t, "SKU-1", out.ProductCode)
	assert.Equal(t, "RCPT-9", out.PaymentDocNo)
}

func TestCalculateRows_SplitRowsRenderMissingSideEmpty(t *testing.T) {
	rows := []worksheet.Row{
		{InvoiceNumber: "I1", InvoiceAmount: "100", DueDate: "20-03-2025", DiscountRate: "5",
			PaymentDocNo: "P1", PaymentAmount: "300", PaymentDate: "25-03-2025"},
	}

	out := worksheet.CalculateRows(rows)

	require.Len(t, out, 2)
	assert.Equal(t, "Adjusted", out[0].Note)
	assert.Equal(t, "N/A", out[0].DaysDifference, "paid after due date")
	assert.Empty(t, out[0].DiscountAmount, "absent discount renders empty")
	assert.Equal(t, "100.00", out[0].FinalPayment)

	excess := out[1]
	assert.Equal(t, "Excess Payment", excess.Note)
	assert.Empty(t, excess.InvoiceNumber)
	assert.Empty(t, excess.InvoiceAmount)
	assert.Empty(t, excess.DiscountRate)
	assert.Equal(t, "200.00", excess.PaymentAmount)
	assert.Equal(t, "P1", excess.PaymentDocNo)
	assert.Empty(t, excess.DiscountAmount)
}

func TestCalculate_AccountingIdentity(t *testing.T) {
	rows := []worksheet.Row{
		{InvoiceAmount: "100.00", DueDate: "20-03-2025", DiscountRate: "1", PaymentAmount: "150.00", PaymentDate: "01-03-2025"},
		{InvoiceAmount: "100.00", DueDate: "20-03-2025", DiscountRate: "1"},
	}

	res := worksheet.Calculate(rows)
	invoices, _ := worksheet.Split(rows)
	totals := settlement.InvoiceTotals(res.Records)

	for _, inv := range invoices {
		assert.True(t, generic.AmountsEqual(inv.Amount, totals[inv.ID], generic.DisplayPlaces), inv.ID)
	}
	assert.Equal(t, 1, res.Summary.ByCase[settlement.CaseUnadjustedInvoice])
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImport_HeaderMatchingAndShortRows(t *testing.T) {
	text := "  PRODUCT code ,description,InvoiceNumber,Due Date,Invoice Amount,Mystery,Payment Date,Payment Amount\n" +
		"SKU-1,Bolts,INV-1,2025-03-20,100.50,x,5-3-2025,100.50\n" +
		"SKU-2,Nuts\n"

	rows, err := worksheet.Import(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "SKU-1", rows[0].ProductCode)
	assert.Equal(t, "Bolts", rows[0].Description)
	assert.Equal(t, "INV-1", rows[0].InvoiceNumber)
	assert.Equal(t, "20-03-2025", rows[0].DueDate, "due date normalized")
	assert.Equal(t, "05-03-2025", rows[0].PaymentDate, "payment date normalized")
	assert.Equal(t, "100.50", rows[0].InvoiceAmount)
	assert.Equal(t, "100.50", rows[0].PaymentAmount)

	assert.Equal(t, "SKU-2", rows[1].ProductCode)
	assert.Equal(t, "Nuts", rows[1].Description)
	assert.Empty(t, rows[1].InvoiceNumber)
	assert.Empty(t, rows[1].PaymentAmount)
}

func TestImport_AliasesBOMAndBlankLines(t *testing.T) {
	text := "\xEF\xBB\xBFQty,Invoice#,Discount %,Payment Ref\n" +
		"3,A-1,2.5,R-9\n" +
		"\n" +
		",,,\n" +
		"4,A-2,,\n"

	rows, err := worksheet.Import(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[0].Quantity)
	assert.Equal(t, "A-1", rows[0].InvoiceNumber)
	assert.Equal(t, "2.5", rows[0].DiscountRate)
	assert.Equal(t, "R-9", rows[0].PaymentDocNo)
	assert.Equal(t, "A-2", rows[1].InvoiceNumber)
}

func TestImport_IgnoresDerivedColumns(t *testing.T) {
	text := `"Invoice Amount","Final Payment","Note"` + "\n" + `"10.00","9.00","Full Match"` + "\n"

	rows, err := worksheet.Import(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "10.00", rows[0].InvoiceAmount)
	assert.Empty(t, rows[0].FinalPayment)
	assert.Empty(t, rows[0].Note)
}

func TestImport_EmptyInput(t *testing.T) {
	_, err := worksheet.Import(strings.NewReader(""))
	assert.ErrorIs(t, err, generic.ErrEmptyInput)
	assert.True(t, generic.IsClientError(err))
}

func TestImport_HeaderOnly(t *testing.T) {
	rows, err := worksheet.Import(strings.NewReader("Invoice Amount,Payment Amount\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExport_QuotesEveryField(t *testing.T) {
	rows := []worksheet.Row{{Description: `12" pipe, steel`, InvoiceAmount: "5.00", Note: "Full Match"}}

	out, err := worksheet.ExportString(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `"Product Code","Description","Invoice Number"`))
	assert.True(t, strings.HasSuffix(lines[0], `"Discount Amount","Final Payment","Note"`))
	assert.Equal(t, 17, strings.Count(lines[0], `","`)+1)
	assert.Contains(t, lines[1], `"12"" pipe, steel"`)
	assert.True(t, strings.HasPrefix(lines[1], `"",`))
	assert.True(t, strings.HasSuffix(lines[1], `"Full Match"`))
}

func TestExportImport_RoundTrip(t *testing.T) {
	in := []worksheet.Row{
		{ProductCode: "SKU-1", Description: "Bolts, zinc", InvoiceNumber: "INV-1", InvoiceDate: "01-03-2025",
			DueDate: "2025-03-20", Quantity: "10", UnitPrice: "10.05", InvoiceAmount: "100.50",
			PaymentDocNo: "R-1", PaymentDate: "5-3-2025", PaymentAmount: "60.25", DiscountRate: "2"},
		{InvoiceNumber: "INV-2", DueDate: "31-03-2025", InvoiceAmount: "40", PaymentAmount: "80.25", PaymentDate: "01-04-2025"},
	}

	// Export the calculated view, then re-import it.
	exported := append([]worksheet.Row{}, in...)
	exported[0].FinalPayment = "999.99"
	text, err := worksheet.ExportString(exported)
	require.NoError(t, err)

	back, err := worksheet.Import(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, back, len(in))

	for i := range in {
		assert.True(t, generic.ParseAmount(in[i].InvoiceAmount).Equal(generic.ParseAmount(back[i].InvoiceAmount)))
		assert.True(t, generic.ParseAmount(in[i].PaymentAmount).Equal(generic.ParseAmount(back[i].PaymentAmount)))
		assert.True(t, generic.ParseAmount(in[i].DiscountRate).Equal(generic.ParseAmount(back[i].DiscountRate)))
		assert.Equal(t, generic.FormatDate(in[i].DueDate), back[i].DueDate)
		assert.Equal(t, generic.FormatDate(in[i].PaymentDate), back[i].PaymentDate)
		assert.Empty(t, back[i].FinalPayment)
	}
	assert.Equal(t, "Bolts, zinc", back[0].Description)
	assert.Equal(t, "20-03-2025", back[0].DueDate)
	assert.Equal(t, "05-03-2025", back[0].PaymentDate)
}

func TestHeaders(t *testing.T) {
	assert.Len(t, worksheet.ImportHeaders(), 12)
	assert.Len(t, worksheet.ExportHeaders(), 17)
	assert.Equal(t, worksheet.ImportHeaders(), worksheet.ExportHeaders()[:12])
}
