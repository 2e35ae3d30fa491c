// Package monitor probes the target URLs of stored links on demand.
package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/axellelanca/edgelink/internal/models"
)

// Report is the outcome of probing one link's target.
type Report struct {
	ShortCode  string
	LongURL    string
	Accessible bool
	StatusCode int    // 0 when no response was received
	Error      string
}

// Checker sends HEAD requests to link targets with a bounded number of workers.
type Checker struct {
	client  *http.Client
	workers int
	timeout time.Duration
	logger  *logrus.Entry
}

// NewChecker returns a Checker using workers concurrent probes, each bounded by timeout.
func NewChecker(client *http.Client, workers int, timeout time.Duration, logger *logrus.Logger) *Checker {
	if client == nil {
		client = &http.Client{}
	}
	if workers < 1 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		client:  client,
		workers: workers,
		timeout: timeout,
		logger:  logger.WithField("component", "monitor"),
	}
}

// CheckAll probes every link and returns the reports in the order of links.
func (m *Checker) CheckAll(ctx context.Context, links []models.Link) []Report {
	reports := make([]Report, len(links))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range m.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i] = m.Check(ctx, links[i])
			}
		}()
	}

	for i := range links {
		select {
		case jobs <- i:
		case <-ctx.Done():
			reports[i] = Report{ShortCode: links[i].ShortCode, LongURL: links[i].LongURL, Error: ctx.Err().Error()}
		}
	}
	close(jobs)
	wg.Wait()

	return reports
}

// Check probes a single link. 2xx and 3xx answers count as accessible.
func (m *Checker) Check(ctx context.Context, link models.Link) Report {
	r := Report{ShortCode: link.ShortCode, LongURL: link.LongURL}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link.LongURL, nil)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	resp, err := m.client.Do(req)
	if err != nil {
		r.Error = err.Error()
		m.logger.WithError(err).WithField("code", link.ShortCode).Debug("target unreachable")
		return r
	}
	defer resp.Body.Close()

	r.StatusCode = resp.StatusCode
	r.Accessible = resp.StatusCode >= 200 && resp.StatusCode < 400
	return r
}
