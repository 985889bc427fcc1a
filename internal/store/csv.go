package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// CSV appends purchase lines to a CSV file, writing the header when the file is new.
type CSV struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewCSV(path string, logger *slog.Logger) (*CSV, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return nil, storeError("csv path is empty", os.ErrInvalid)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storeError("create csv directory", err)
	}
	return &CSV{path: path, logger: logger}, nil
}

func (s *CSV) Append(_ context.Context, lines []entity.PurchaseLine) error {
	if len(lines) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return storeError("opening csv file", err)
	}
	w := csv.NewWriter(file)

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return storeError("stat csv file", err)
	}
	if stat.Size() == 0 {
		if err := w.Write(entity.PurchaseColumns); err != nil {
			_ = file.Close()
			return storeError("writing headers", err)
		}
	}
	for _, l := range lines {
		if err := w.Write(l.Record()); err != nil {
			_ = file.Close()
			return storeError("writing csv record", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return storeError("flushing csv", err)
	}
	if err := file.Close(); err != nil {
		return storeError("closing csv file", err)
	}

	s.logger.Debug("store.csv.appended", "file", s.path, "count", len(lines))
	return nil
}

func (s *CSV) List(_ context.Context, f Filter) ([]entity.PurchaseLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []entity.PurchaseLine{}, nil
	}
	if err != nil {
		return nil, storeError("opening csv file", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(entity.PurchaseColumns)

	out := make([]entity.PurchaseLine, 0)
	for row := 1; ; row++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, storeError("reading csv", err)
		}
		if row == 1 && rec[0] == entity.PurchaseColumns[0] {
			continue
		}
		p, err := parseRecord(rec)
		if err != nil {
			return nil, storeError(fmt.Sprintf("csv row %d", row), err)
		}
		if !f.match(p) {
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && uint64(len(out)) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Ping checks that the csv directory exists.
func (s *CSV) Ping(context.Context) error {
	st, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return storeError("csv directory", err)
	}
	if !st.IsDir() {
		return storeError("csv directory", fmt.Errorf("%s is not a directory", filepath.Dir(s.path)))
	}
	return nil
}

func (s *CSV) Close() error { return nil }

func parseRecord(rec []string) (entity.PurchaseLine, error) {
	qty, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return entity.PurchaseLine{}, fmt.Errorf("qty: %w", err)
	}
	total, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return entity.PurchaseLine{}, fmt.Errorf("total_cost_gross: %w", err)
	}
	rate, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return entity.PurchaseLine{}, fmt.Errorf("iva_rate: %w", err)
	}
	return entity.PurchaseLine{
		Date:           rec[0],
		Supplier:       rec[1],
		Ingredient:     rec[2],
		Qty:            qty,
		Unit:           rec[4],
		TotalCostGross: total,
		IVARate:        rate,
		InvoiceNo:      rec[7],
		Notes:          rec[8],
	}, nil
}
