package services

import (
	"context"
	"fmt"

	"sheet-enricher/models"
	"sheet-enricher/utils"
)

// SheetReader reads forward-filled sheets from a source workbook.
type SheetReader interface {
	SheetNames() []string
	ReadSheet(name string) (*models.Sheet, error)
}

// RateSource fetches the published currency rate table.
type RateSource interface {
	FetchRates(ctx context.Context) (*models.Sheet, error)
}

// Loader merges every source sheet and the rate table into one workbook.
type Loader struct {
	rates      RateSource
	logger     *utils.Logger
	maxWorkers int
}

func NewLoader(rates RateSource, logger *utils.Logger, maxWorkers int) *Loader {
	return &Loader{rates: rates, logger: logger, maxWorkers: maxWorkers}
}

// Load reads each sheet and fetches the rates as independent pool tasks.
// Source sheets keep their order; the rate sheet comes last and replaces any
// source sheet of the same name.
func (l *Loader) Load(ctx context.Context, src SheetReader) (*models.Workbook, error) {
	names := src.SheetNames()
	sheets := make([]*models.Sheet, len(names))
	var rates *models.Sheet

	pool := utils.NewWorkerPool(ctx, l.maxWorkers, 0)
	for i, name := range names {
		i, name := i, name
		pool.Submit(func(ctx context.Context) error {
			s, err := src.ReadSheet(name)
			if err != nil {
				return fmt.Errorf("read sheet %q: %w", name, err)
			}
			sheets[i] = s
			l.logger.Debug("[loader] Sheet %q loaded: %d rows", name, s.Len())
			return nil
		})
	}
	pool.Submit(func(ctx context.Context) error {
		s, err := l.rates.FetchRates(ctx)
		if err != nil {
			return fmt.Errorf("fetch currency rates: %w", err)
		}
		s.Name = models.SheetRates
		rates = s
		return nil
	})

	if err := pool.Wait(); err != nil {
		return nil, err
	}

	wb := models.NewWorkbook()
	for _, s := range sheets {
		if s.Name == models.SheetRates {
			continue
		}
		wb.Put(s)
	}
	wb.Put(rates)

	l.logger.Info("[loader] Loaded %d sheets and %d currency rates", len(sheets), rates.Len())
	return wb, nil
}
