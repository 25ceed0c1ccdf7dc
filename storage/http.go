package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"pixpal/config"
	"pixpal/logging"
	"pixpal/oops"

	"github.com/jpillora/backoff"
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code %d from %s", e.StatusCode, e.URL)
}

// Temporary reports whether the request may succeed when retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// HTTPStore fetches with GET and saves with PUT, retrying transport errors
// and 5xx/429 responses with exponential backoff.
type HTTPStore struct {
	Client  *http.Client
	Retries int
	Backoff backoff.Backoff
}

func NewHTTPStore(cfg config.FetchConfig) *HTTPStore {
	return &HTTPStore{
		Client:  &http.Client{Timeout: cfg.Timeout},
		Retries: cfg.Retries,
		Backoff: backoff.Backoff{
			Min:    cfg.MinBackoff,
			Max:    cfg.MaxBackoff,
			Jitter: true,
		},
	}
}

func (s *HTTPStore) Load(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := s.retry(ctx, url, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return oops.New(err, "failed to make request")
		}
		res, err := s.Client.Do(req)
		if err != nil {
			return oops.New(err, "failed to fetch %s", url)
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || 299 < res.StatusCode {
			return &StatusError{URL: url, StatusCode: res.StatusCode}
		}
		data, err = io.ReadAll(res.Body)
		if err != nil {
			return oops.New(err, "failed to read response body from %s", url)
		}
		return nil
	})
	return data, err
}

func (s *HTTPStore) Save(ctx context.Context, url string, data []byte) (string, error) {
	err := s.retry(ctx, url, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
		if err != nil {
			return oops.New(err, "failed to make request")
		}
		req.Header.Set("Content-Type", "image/png")
		res, err := s.Client.Do(req)
		if err != nil {
			return oops.New(err, "failed to upload to %s", url)
		}
		defer res.Body.Close()
		io.Copy(io.Discard, res.Body)

		if res.StatusCode < 200 || 299 < res.StatusCode {
			return &StatusError{URL: url, StatusCode: res.StatusCode}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

func (s *HTTPStore) retry(ctx context.Context, url string, attempt func() error) error {
	boff := s.Backoff // each call backs off from scratch
	for i := 0; ; i++ {
		err := attempt()
		if err == nil {
			return nil
		}
		if statusErr, ok := err.(*StatusError); ok && !statusErr.Temporary() {
			return err
		}
		if i >= s.Retries || ctx.Err() != nil {
			return err
		}

		dur := boff.Duration()
		logging.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", i+1).
			Dur("retrying after", dur).
			Msg("request failed")

		timer := time.NewTimer(dur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return oops.New(ctx.Err(), "gave up on %s", url)
		case <-timer.C:
		}
	}
}
