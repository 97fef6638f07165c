// Package bench compares the rest client against plain net/http on the same
// endpoint.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/wesleyorama2/lightrest/internal/gamesapi"
	"github.com/wesleyorama2/lightrest/internal/output"
	"github.com/wesleyorama2/lightrest/rest"
)

// Config describes one benchmark run.
type Config struct {
	// URL must answer GET with a JSON array of todos.
	URL         string
	Iterations  int
	Concurrency int
	// Rate caps requests per second for each client. Zero means unlimited.
	Rate    float64
	Timeout time.Duration
	// Clients restricts the run to the named clients. Empty runs all.
	Clients []string
}

// Report is the outcome of Run.
type Report struct {
	URL         string  `json:"url" yaml:"url"`
	Iterations  int     `json:"iterations" yaml:"iterations"`
	Concurrency int     `json:"concurrency" yaml:"concurrency"`
	Rate        float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
	Results     []Stats `json:"results" yaml:"results"`
}

// Call performs one request and fully consumes the response.
type Call func(ctx context.Context) error

// Client is one contestant.
type Client struct {
	Name string
	Call Call
}

// Client names.
const (
	NetHTTP  = "net/http"
	RestJSON = "rest typed"
	RestText = "rest text"
)

// Clients builds the three contestants against target. Each gets its own
// transport so connection reuse does not leak between them.
func Clients(target string, timeout time.Duration) ([]Client, error) {
	hc := &http.Client{Timeout: timeout}

	typed, err := rest.New(rest.WithTimeout(timeout), rest.WithEnsureSuccess(true))
	if err != nil {
		return nil, err
	}
	text, err := rest.New(rest.WithTimeout(timeout), rest.WithEnsureSuccess(true))
	if err != nil {
		return nil, err
	}

	return []Client{
		{Name: NetHTTP, Call: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return err
			}
			resp, err := hc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode/100 != 2 {
				io.Copy(io.Discard, resp.Body)
				return fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
			var todos []gamesapi.Todo
			return json.NewDecoder(resp.Body).Decode(&todos)
		}},
		{Name: RestJSON, Call: func(ctx context.Context) error {
			_, _, err := rest.Get[[]gamesapi.Todo](ctx, typed, target, nil)
			return err
		}},
		{Name: RestText, Call: func(ctx context.Context) error {
			_, _, err := text.Get(ctx, target, nil)
			return err
		}},
	}, nil
}

// Run benchmarks every selected client in turn and reports their stats.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.URL == "" {
		return nil, errors.New("bench: url is required")
	}
	if cfg.Iterations <= 0 {
		return nil, errors.New("bench: iterations must be positive")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Rate < 0 {
		return nil, errors.New("bench: rate must not be negative")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = rest.DefaultTimeout
	}

	clients, err := Clients(cfg.URL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	clients, err = selectClients(clients, cfg.Clients)
	if err != nil {
		return nil, err
	}

	report := &Report{
		URL:         cfg.URL,
		Iterations:  cfg.Iterations,
		Concurrency: cfg.Concurrency,
		Rate:        cfg.Rate,
	}
	for _, c := range clients {
		stats, err := Measure(ctx, c, cfg.Iterations, cfg.Concurrency, cfg.Rate)
		if err != nil {
			return nil, errors.Wrapf(err, "bench: %s", c.Name)
		}
		report.Results = append(report.Results, stats)
	}
	return report, nil
}

func selectClients(all []Client, names []string) ([]Client, error) {
	if len(names) == 0 {
		return all, nil
	}
	var out []Client
	for _, name := range names {
		found := false
		for _, c := range all {
			if c.Name == name {
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Errorf("bench: unknown client %q", name)
		}
	}
	return out, nil
}

// Measure runs c iterations times on concurrency workers, paced by rps when
// it is positive. It only fails when ctx is done; call errors are counted.
func Measure(ctx context.Context, c Client, iterations, concurrency int, rps float64) (Stats, error) {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	rec := NewRecorder()
	jobs := make(chan struct{})
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}
				begin := time.Now()
				err := c.Call(ctx)
				rec.Record(time.Since(begin), err)
			}
		}()
	}

feed:
	for i := 0; i < iterations; i++ {
		select {
		case jobs <- struct{}{}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	return rec.Snapshot(c.Name, time.Since(start)), nil
}

// Table lays the report out for the terminal.
func (r *Report) Table() *output.Table {
	t := &output.Table{
		Title:   fmt.Sprintf("GET %s  iterations=%d concurrency=%d", r.URL, r.Iterations, r.Concurrency),
		Headers: []string{"CLIENT", "REQS", "ERRS", "MIN", "MEAN", "P50", "P90", "P99", "MAX", "REQ/S"},
	}
	for _, s := range r.Results {
		t.AddRow(
			s.Client,
			fmt.Sprint(s.Requests),
			fmt.Sprint(s.Errors),
			s.Min.String(),
			s.Mean.String(),
			s.P50.String(),
			s.P90.String(),
			s.P99.String(),
			s.Max.String(),
			fmt.Sprintf("%.1f", s.Throughput),
		)
	}
	return t
}

// Write renders the report in format.
func (r *Report) Write(w io.Writer, format output.OutputFormat, scheme *output.ColorScheme) error {
	var text string
	var err error
	switch format {
	case output.FormatJSON:
		text, err = output.RenderJSON(r, true)
	case output.FormatYAML:
		text, err = output.RenderYAML(r)
	default:
		return r.Table().Render(w, scheme)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}
