package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/food_delivery/internal/transport"
)

const PaymentsSheet = "Payments"

var paymentHeader = []string{"ID", "User ID", "Order IDs", "Payment Method", "Amount", "Status", "Created At"}

// WritePayments renders the payment ledger as an xlsx workbook.
func WritePayments(w io.Writer, payments []transport.PaymentView) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(PaymentsSheet)
	if err != nil {
		return fmt.Errorf("xlsx: add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range paymentHeader {
		header.AddCell().SetString(h)
	}

	for _, p := range payments {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetInt(int(p.UserID))
		row.AddCell().SetString(joinIDs(p.OrderIDs))
		row.AddCell().SetString(p.PaymentMethod)
		amount, _ := p.Amount.Float64()
		row.AddCell().SetFloatWithFormat(amount, "0.00")
		row.AddCell().SetString(p.Status)
		row.AddCell().SetString(p.CreatedAt)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
