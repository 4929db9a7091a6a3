package contract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"adminportal/internal/domain/forms"
)

const pdfFontFamily = "portal"

// PDFRenderer lays out a contract draft as a stamping request sheet.
// Without a TrueType font the sheet uses Helvetica and CJK text is replaced
// by question marks.
type PDFRenderer struct {
	FontPath string
}

func (r PDFRenderer) Render(view DraftView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family, tr := "Helvetica", latinOnly
	if r.FontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", r.FontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font: %w", err)
		}
		family, tr = pdfFontFamily, func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 16)
	pdf.Cell(0, 10, tr("合約用印申請單"))
	pdf.Ln(12)

	section := ""
	for _, field := range DraftSchema.Fields() {
		if field.Side || slotOf(field.Key) > view.Enabled {
			continue
		}
		if field.Section != section {
			section = field.Section
			pdf.Ln(2)
			pdf.SetFont(family, "", 13)
			pdf.Cell(0, 8, tr(section))
			pdf.Ln(9)
		}
		pdf.SetFont(family, "", 10)
		pdf.CellFormat(60, 7, tr(field.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(displayValue(field, view.Draft)), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont(family, "", 11)
	pdf.Cell(0, 8, tr(fmt.Sprintf("合約占比合計：%s%%", view.TotalPercentage.String())))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render contract pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func displayValue(field forms.Field, draft map[string]string) string {
	value := draft[field.Key]
	if field.OtherKey != "" && value == forms.OtherOption {
		return forms.OtherOption + "_" + strings.TrimSpace(draft[field.OtherKey])
	}
	return value
}

func latinOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFF {
			return '?'
		}
		return r
	}, s)
}
