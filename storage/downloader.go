package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"sheet-enricher/utils"
)

// Downloader fetches the source workbook over HTTP.
type Downloader struct {
	client *http.Client
	retry  *utils.RetryConfig
	logger *utils.Logger
}

func NewDownloader(timeout time.Duration, retry *utils.RetryConfig, logger *utils.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: timeout},
		retry:  retry,
		logger: logger,
	}
}

// Download saves url to dest. The file is replaced only after a complete download.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("download: create dir: %w", err)
	}

	err := d.retry.Do(ctx, "download-workbook", func() error {
		return d.fetch(ctx, url, dest)
	})
	if err != nil {
		return err
	}
	d.logger.Info("[download] Workbook saved to %s", dest)
	return nil
}

func (d *Downloader) fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download: build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("download: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download: write body: %w", err)
	}
	d.logger.Debug("[download] %d bytes from %s", n, url)

	return os.Rename(tmp.Name(), dest)
}
