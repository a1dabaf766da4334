package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/metrics"
	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
)

const notesImportAdjust = "csv import adjustment"

// ExportColumns is the header of the product export.
var ExportColumns = []string{"code", "name", "category", "stock", "reorder_point", "description", "supplier_id"}

// ImportResult summarises an applied import file.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Total is the number of rows written.
func (r ImportResult) Total() int {
	return r.Created + r.Updated
}

type CSVService interface {
	ExportProducts(ctx context.Context, w io.Writer) error
	ImportProducts(ctx context.Context, r io.Reader, actorID uint) (*ImportResult, error)
}

type csvService struct {
	store       repository.Store
	productRepo repository.ProductRepository
	mover       stockMover
	log         zerolog.Logger
}

func NewCSVService(store repository.Store, pRepo repository.ProductRepository, log zerolog.Logger) CSVService {
	return &csvService{
		store:       store,
		productRepo: pRepo,
		mover:       stockMover{now: time.Now},
		log:         log.With().Str("component", "csv").Logger(),
	}
}

func (s *csvService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, p := range products {
		supplier := ""
		if p.SupplierID != nil {
			supplier = strconv.FormatUint(uint64(*p.SupplierID), 10)
		}
		if err := cw.Write([]string{
			p.Code,
			p.Name,
			p.Category,
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.ReorderPoint),
			p.Description,
			supplier,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// importRow is one parsed line; line is its 1-based line number in the file.
type importRow struct {
	line         int
	code         string
	name         string
	category     string
	stock        int
	reorderPoint int
	description  string
}

// ImportProducts upserts products by code. The file is parsed completely
// before anything is written and then applied in one unit of work, so one
// bad row rejects the whole file.
func (s *csvService) ImportProducts(ctx context.Context, r io.Reader, actorID uint) (*ImportResult, error) {
	rows, skipped, err := parseImport(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Skipped: skipped}
	err = s.store.WithTransaction(ctx, func(ctx context.Context, products repository.ProductRepository, ledger repository.TransactionRepository) error {
		*result = ImportResult{Skipped: skipped}
		for _, row := range rows {
			created, err := s.upsert(ctx, products, ledger, row, actorID)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ImportRowsTotal.WithLabelValues("created").Add(float64(result.Created))
	metrics.ImportRowsTotal.WithLabelValues("updated").Add(float64(result.Updated))
	s.log.Info().Int("created", result.Created).Int("updated", result.Updated).Int("skipped", result.Skipped).
		Msg("products imported")
	return result, nil
}

func (s *csvService) upsert(ctx context.Context, products repository.ProductRepository, ledger repository.TransactionRepository, row importRow, actorID uint) (bool, error) {
	found, err := products.FindByCode(ctx, row.code)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	if found == nil {
		if row.name == "" {
			return false, apperr.Invalid("row %d: name is required for new product %s", row.line, row.code)
		}
		p := &model.Product{
			Code:         row.code,
			Name:         row.name,
			Category:     row.category,
			ReorderPoint: row.reorderPoint,
			Description:  row.description,
		}
		if err := products.Create(ctx, p); err != nil {
			return false, err
		}
		_, err := s.mover.adjustTo(ctx, products, ledger, p.ID, 0, row.stock, actorID, notesImportAdjust)
		return true, err
	}

	p, err := products.FindByIDForUpdate(ctx, found.ID)
	if err != nil {
		return false, err
	}
	if row.name != "" {
		p.Name = row.name
	}
	if row.category != "" {
		p.Category = row.category
	}
	p.ReorderPoint = row.reorderPoint
	p.Description = row.description
	if err := products.Update(ctx, p); err != nil {
		return false, err
	}
	_, err = s.mover.adjustTo(ctx, products, ledger, p.ID, p.Stock, row.stock, actorID, notesImportAdjust)
	return false, err
}

func parseImport(r io.Reader) ([]importRow, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, apperr.Invalid("file is empty")
	}
	if err != nil {
		return nil, 0, apperr.Invalid("file is not valid CSV: %v", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	if _, ok := cols["code"]; !ok {
		return nil, 0, apperr.Invalid("missing code column")
	}

	var (
		rows    []importRow
		skipped int
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, 0, apperr.Invalid("row %d: %v", pe.Line, pe.Err)
			}
			return nil, 0, err
		}
		line, _ := cr.FieldPos(0)

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		code := field("code")
		if code == "" {
			skipped++
			continue
		}
		stock, err := parseCount(field("stock"))
		if err != nil {
			return nil, 0, apperr.Invalid("row %d: stock %v", line, err)
		}
		reorder, err := parseCount(field("reorder_point"))
		if err != nil {
			return nil, 0, apperr.Invalid("row %d: reorder_point %v", line, err)
		}

		rows = append(rows, importRow{
			line:         line,
			code:         code,
			name:         field("name"),
			category:     field("category"),
			stock:        stock,
			reorderPoint: reorder,
			description:  field("description"),
		})
	}
	return rows, skipped, nil
}

// parseCount reads a non-negative integer; blank means 0. Whole-valued
// decimals such as "12.0" are accepted since spreadsheets emit them.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil || math.IsNaN(f) || f != math.Trunc(f):
		return 0, errors.New("must be a whole number")
	case f < 0:
		return 0, errors.New("must not be negative")
	case f > maxQuantity:
		return 0, errors.New("is too large")
	}
	return int(f), nil
}
