package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"limeal.fr/cobalt/pkg/logging"
)

const UserAgent = "cobalt-launcher-nano/0.8"

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status code %d", e.URL, e.StatusCode)
}

// NewMetaClient returns the resty client used for small JSON/XML metadata
// requests. Transport errors, 429 and 5xx responses are retried with backoff.
func NewMetaClient(retries int, timeout time.Duration) *resty.Client {
	return resty.New().
		SetRetryCount(retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetTimeout(timeout).
		SetHeader("User-Agent", UserAgent).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
}

// GetBytes performs a GET with the metadata client and returns the body.
func GetBytes(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// retryLogger adapts the launcher logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	log *logging.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorf("[retry] %s %v", msg, keysAndValues)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("[retry] %s %v", msg, keysAndValues)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnf("[retry] %s %v", msg, keysAndValues)
}

// Downloader streams binary files (JDK archives, jars, assets) to disk.
type Downloader struct {
	client *retryablehttp.Client

	// Progress receives a byte progress bar for described downloads. Nil disables bars.
	Progress io.Writer
}

func NewDownloader(retryMax int, log *logging.Logger) *Downloader {
	if log == nil {
		log = logging.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = retryLogger{log: log}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Downloader{client: rc}
}

// HTTPClient exposes the retrying client as a plain *http.Client.
func (d *Downloader) HTTPClient() *http.Client {
	return d.client.StandardClient()
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// Download writes url to dest through a ".part" file promoted on success.
// A non-empty description renders a progress bar on d.Progress.
func (d *Downloader) Download(ctx context.Context, url, dest, description string) error {
	resp, err := d.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	var w io.Writer = f
	if d.Progress != nil && description != "" {
		bar := NewBytesBar(resp.ContentLength, description, d.Progress)
		defer bar.Finish()
		w = io.MultiWriter(f, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}

// Bytes downloads url fully into memory.
func (d *Downloader) Bytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
