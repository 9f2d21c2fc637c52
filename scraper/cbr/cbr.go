package cbr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"sheet-enricher/config"
	"sheet-enricher/models"
	"sheet-enricher/utils"
)

// columnCount is the width of the daily rate table:
// numeric code, letter code, units, currency name, rate.
const columnCount = 5

// RawTable is what the page script extracts from the rate table.
type RawTable struct {
	Found   bool       `json:"found"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

const extractTableJS = `
	(function() {
		var table = document.querySelector('table.data');
		if (!table) {
			return {found: false, headers: [], rows: []};
		}
		var headers = Array.from(table.querySelectorAll('th')).map(function(th) {
			return th.textContent;
		});
		var rows = Array.from(table.querySelectorAll('tr')).slice(1).map(function(tr) {
			return Array.from(tr.querySelectorAll('td')).map(function(td) {
				return td.textContent;
			});
		});
		return {found: true, headers: headers, rows: rows};
	})()
`

// Scraper fetches the central bank daily rate table with a headless browser.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a ready-to-use rate Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// FetchRates loads the rate page and returns the table as a sheet, cell text as published.
func (s *Scraper) FetchRates(ctx context.Context) (*models.Sheet, error) {
	chromeBin := s.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	s.logger.Info("[cbr] Fetching rates from %s (browser: %s)", s.cfg.RatesURL, chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var raw RawTable
	err := s.retry.Do(ctx, "fetch-rates", func() error {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, time.Duration(s.cfg.HTTPTimeoutSec)*time.Second)
		defer cancelTimeout()

		raw = RawTable{}
		if err := chromedp.Run(tabCtx,
			chromedp.Navigate(s.cfg.RatesURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Evaluate(extractTableJS, &raw),
		); err != nil {
			return fmt.Errorf("chromedp rate table: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sheet, err := ParseTable(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[cbr] Rate table parsed: %d currencies", sheet.Len())
	return sheet, nil
}

// ParseTable validates the extracted table. Rows without exactly five cells are skipped.
func ParseTable(raw RawTable) (*models.Sheet, error) {
	if !raw.Found {
		return nil, &models.StructureError{Table: models.SheetRates, Reason: "rate table not found on page"}
	}
	headers := make([]string, 0, len(raw.Headers))
	for _, h := range raw.Headers {
		headers = append(headers, strings.TrimSpace(h))
	}
	if len(headers) != columnCount {
		return nil, &models.StructureError{
			Table:  models.SheetRates,
			Reason: fmt.Sprintf("expected %d header cells, got %d", columnCount, len(headers)),
		}
	}

	sheet := models.NewSheet(models.SheetRates, headers)
	for _, row := range raw.Rows {
		if len(row) != columnCount {
			continue
		}
		cells := make([]string, columnCount)
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
		}
		sheet.AppendRow(cells)
	}
	return sheet, nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
