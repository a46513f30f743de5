package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cashloan/internal/backend"
	"cashloan/internal/domain"
	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/session"
	"cashloan/internal/utils"
	"cashloan/internal/views"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"

	defaultExportLimit = 5000
)

// Table is a rendered list view ready for a file export.
type Table struct {
	Title     string
	Filters   []string
	Headers   []string
	Rows      [][]string
	Generated time.Time
}

// ExportService renders the loans and payments tables to XLSX or PDF. It walks
// every backend page for the query and applies the same local pass the table
// applies.
type ExportService struct {
	Client    *backend.Client
	Limit     int
	Log       *zap.Logger
	RequestID string
	// LoanSource and PaymentSource replace the backend, mainly for tests.
	LoanSource    listview.Fetcher[models.Loan]
	PaymentSource listview.Fetcher[models.Payment]
	Now           func() time.Time
}

func (s ExportService) limit() int {
	if s.Limit > 0 {
		return s.Limit
	}
	return defaultExportLimit
}

func (s ExportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s ExportService) loans(token string) listview.Fetcher[models.Loan] {
	if s.LoanSource != nil {
		return s.LoanSource
	}
	return backend.LoanFetcher(s.Client, session.Static(token))
}

func (s ExportService) payments(token string) listview.Fetcher[models.Payment] {
	if s.PaymentSource != nil {
		return s.PaymentSource
	}
	return backend.PaymentFetcher(s.Client, session.Static(token))
}

// collect fetches every page and runs the table's local filter and sort.
func collect[T any](ctx context.Context, d listview.Descriptor[T], f listview.Fetcher[T], q listview.Query, limit int) ([]T, error) {
	items, err := listview.Collect(ctx, f, q, limit)
	if err != nil {
		return nil, err
	}
	items = d.FilterItems(items, q)
	if !d.ServerSort || d.LocalPaging {
		items = listview.SortItems(items, q.Sort(), d.Columns)
	}
	return items, nil
}

func (s ExportService) LoanTable(ctx context.Context, token string, q listview.Query) (Table, error) {
	loans, err := collect(ctx, views.Loans(), s.loans(token), q, s.limit())
	if err != nil {
		return Table{}, err
	}
	t := Table{
		Title:     "Loans",
		Filters:   q.ActiveFilters(),
		Headers:   []string{"Loan #", "Borrower", "Email", "Type", "Principal", "Approved", "Outstanding", "Status", "Applied"},
		Generated: s.now(),
	}
	for _, l := range loans {
		t.Rows = append(t.Rows, []string{
			l.Reference(),
			safe(l.BorrowerName(), "-"),
			safe(l.BorrowerEmail(), "-"),
			safe(l.Type, "-"),
			utils.FormatCurrency(l.PrincipalAmount.Decimal),
			utils.FormatCurrency(l.ApprovedAmount.Decimal),
			utils.FormatCurrency(l.OutstandingBalance.Decimal),
			utils.StatusLabel(l.Status),
			utils.FormatLongDate(l.CreatedAt),
		})
	}
	utils.LogEvent(s.Log, s.RequestID, "export", "loans", "table built", zap.Int("rows", len(t.Rows)))
	return t, nil
}

func (s ExportService) PaymentTable(ctx context.Context, token string, q listview.Query) (Table, error) {
	payments, err := collect(ctx, views.Payments(), s.payments(token), q, s.limit())
	if err != nil {
		return Table{}, err
	}
	t := Table{
		Title:     "Payments",
		Filters:   q.ActiveFilters(),
		Headers:   []string{"ID", "Loan #", "Borrower", "Email", "Amount", "Due", "Paid", "Status"},
		Generated: s.now(),
	}
	for _, p := range payments {
		paid := "-"
		if p.PaidDate != "" {
			paid = utils.FormatLongDate(p.PaidDate)
		}
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(p.ID, 10),
			safe(p.LoanRef(), "-"),
			safe(p.BorrowerName(), "-"),
			safe(p.BorrowerEmail(), "-"),
			utils.FormatCurrency(p.Amount.Decimal),
			utils.FormatLongDate(p.DueDate),
			paid,
			utils.StatusLabel(p.Status),
		})
	}
	utils.LogEvent(s.Log, s.RequestID, "export", "payments", "table built", zap.Int("rows", len(t.Rows)))
	return t, nil
}

// ParseFormat normalizes an export format; empty means xlsx.
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", domain.ValidationError{Field: "format", Msg: "format must be xlsx or pdf"}
	}
}

// Render encodes t and returns the bytes, a file name and the content type.
func Render(t Table, format string) ([]byte, string, string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, "", "", err
	}
	base := fmt.Sprintf("%s_%s", strings.ToLower(safeFilenamePart(t.Title)), t.Generated.Format("20060102_150405"))
	if f == FormatPDF {
		b, err := RenderPDF(t)
		return b, base + ".pdf", ContentTypePDF, err
	}
	b, err := RenderXLSX(t)
	return b, base + ".xlsx", ContentTypeXLSX, err
}

func RenderXLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := safe(t.Title, "Export")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	headers := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	if len(t.Headers) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return nil, err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		_ = f.SetColWidth(sheet, "A", lastCol, 18)
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func RenderPDF(t Table) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(t.Title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, safe(t.Title, "Export"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated: "+t.Generated.Format("January 2, 2006 15:04"))
	pdf.Ln(6)
	if len(t.Filters) > 0 {
		pdf.MultiCell(0, 5, "Filters: "+strings.Join(t.Filters, ", "), "", "", false)
	}
	pdf.Ln(3)

	if len(t.Headers) == 0 {
		return outputPDF(pdf)
	}
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	w := (pageW - left - right) / float64(len(t.Headers))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range t.Headers {
		pdf.CellFormat(w, 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, row := range t.Rows {
		for _, v := range row {
			pdf.CellFormat(w, 6, truncate(tr(v), 28), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(t.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 8, "No records match the current filters.")
	}
	return outputPDF(pdf)
}

func outputPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
