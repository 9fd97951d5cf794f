// Package receipt renders committed sales as small-format PDF receipts, one
// timestamped file per transaction.
package receipt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one printed receipt row. All money is preformatted by the caller.
type Line struct {
	Product   string
	Quantity  string
	UnitPrice string
	Total     string
}

type Printer struct {
	dir       string
	storeName string
}

func NewPrinter(dir, storeName string) *Printer {
	return &Printer{dir: dir, storeName: storeName}
}

// 80mm receipt roll, 120mm page height; long sale tables paginate.
const (
	pageWidth  = 80
	pageHeight = 120
)

// Print writes the receipt and returns the file path.
func (p *Printer) Print(lines []Line, total decimal.Decimal, at time.Time) (string, error) {
	if len(lines) == 0 {
		return "", errors.New("no sale lines to print")
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("receipt_%s_%s.pdf",
		at.Format("2006-01-02_15-04-05"), uuid.NewString()[:8])
	path := filepath.Join(p.dir, name)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetMargins(2, 2, 2)
	pdf.SetAutoPageBreak(true, 4)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, "RECEIPT", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(38, 5, p.storeName, "", 0, "L", false, 0, "")
	pdf.CellFormat(38, 5, at.Format("2006-01-02 15:04:05"), "", 1, "R", false, 0, "")
	pdf.Ln(1)

	colWidths := [4]float64{30, 14, 16, 16}
	headers := [4]string{"Product", "Qty", "Unit", "Total"}

	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 5, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, line := range lines {
		cells := [4]string{line.Product, line.Quantity, line.UnitPrice, line.Total}
		for i, cell := range cells {
			pdf.CellFormat(colWidths[i], 5, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 6, "Total: "+total.StringFixed(2), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}
