package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookstore/internal/domain"
	"github.com/google/uuid"
)

type BookWriter interface {
	Upsert(ctx context.Context, book domain.Book) (*domain.Book, error)
}

// CSVImporter reads a book catalog export and inserts or reprices books by ISBN.
type CSVImporter struct {
	reader   *csv.Reader
	books    BookWriter
	currency string
}

// NewCSVImporter uses currency for rows that leave it empty.
func NewCSVImporter(r io.Reader, books BookWriter, currency string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		books:    books,
		currency: currency,
	}
}

type csvRow struct {
	line     int
	ID       string
	ISBN     string
	Title    string
	Author   string
	Cents    int64
	Currency string
}

// Run parses CSV rows and upserts one book per row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"isbn", "title", "price_cents"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if row == nil {
			continue
		}
		row.line = line
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.ISBN == "" || row.Title == "" {
		return fmt.Errorf("row %d: isbn and title are required", row.line)
	}
	if row.ID != "" {
		if _, err := uuid.Parse(row.ID); err != nil {
			return fmt.Errorf("row %d: invalid id %q", row.line, row.ID)
		}
	}
	currency := row.Currency
	if currency == "" {
		currency = i.currency
	}

	_, err := i.books.Upsert(ctx, domain.Book{
		ID:         row.ID,
		ISBN:       row.ISBN,
		Title:      row.Title,
		Author:     row.Author,
		PriceCents: row.Cents,
		Currency:   strings.ToUpper(currency),
	})
	if err != nil {
		return fmt.Errorf("upsert book %q: %w", row.ISBN, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// parseRow returns nil for blank rows.
func parseRow(record []string, index map[string]int) (*csvRow, error) {
	row := &csvRow{
		ID:       pick(record, index, "id"),
		ISBN:     pick(record, index, "isbn"),
		Title:    pick(record, index, "title"),
		Author:   pick(record, index, "author"),
		Currency: pick(record, index, "currency"),
	}
	centStr := pick(record, index, "price_cents")
	if row.ISBN == "" && row.Title == "" && centStr == "" {
		return nil, nil
	}
	cents, err := strconv.ParseInt(centStr, 10, 64)
	if err != nil || cents < 0 {
		return nil, fmt.Errorf("invalid price_cents %q", centStr)
	}
	row.Cents = cents
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
