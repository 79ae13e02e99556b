// Package export renders the claim list as CSV for download.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ccube-expense/ccube-expense/internal/expense"
	"github.com/ccube-expense/ccube-expense/internal/project"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	s.pendingLines = 0
	return s.buf.Flush()
}

// ProjectResolver resolves the project a claim references.
type ProjectResolver interface {
	Get(id string) (project.Project, error)
}

// Writer streams the claim list as CSV.
type Writer struct {
	projects ProjectResolver
	printer  *message.Printer
}

// NewWriter constructs a CSV export writer.
func NewWriter(projects ProjectResolver) *Writer {
	return &Writer{projects: projects, printer: message.NewPrinter(language.English)}
}

var header = []string{
	"id", "date", "project_code", "project_name", "category", "status",
	"payment_method", "payee", "invoice_number", "items", "total_amount",
	"purchase_request",
}

// Write streams all claims to w in submission order.
func (e *Writer) Write(w io.Writer, claims []expense.Expense) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, claim := range claims {
		if err := streamer.writeRow(e.row(claim)); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	return streamer.flush()
}

func (e *Writer) row(claim expense.Expense) []string {
	code, name := claim.ProjectID, ""
	if p, err := e.projects.Get(claim.ProjectID); err == nil {
		code, name = p.Code, p.Name
	}
	payee := claim.PayerName
	if claim.PaymentMethod == expense.PaymentDirect {
		payee = claim.VendorTaxID
	}
	return []string{
		claim.ID,
		claim.Date.Format(time.DateOnly),
		code,
		name,
		project.CategoryName(claim.Category),
		expense.StatusLabels[claim.Status],
		string(claim.PaymentMethod),
		payee,
		claim.InvoiceNumber,
		itemSummary(claim.Items),
		e.printer.Sprintf("%.2f", claim.TotalAmount),
		strconv.FormatBool(claim.RequiresPurchaseRequest),
	}
}

func itemSummary(items []expense.InvoiceItem) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s x%d @%.2f", item.Name, item.Quantity, item.UnitPrice)
	}
	return out
}
