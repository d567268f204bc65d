package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"
)

// Сценарий нагрузочного теста: у каждого воркера свой покупатель, цикл
// "положить в корзину → оформить заказ" крутится до исчерпания total.
// Все воркеры бьют в одну книгу, чтобы давить на атомарность списания.

type config struct {
	addr        string
	total       int
	concurrency int
	qty         int
	stock       int
	priceMinor  int64
	timeout     time.Duration
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type report struct {
	StartedAt       time.Time        `json:"started_at"`
	DurationSeconds float64          `json:"duration_seconds"`
	TotalCheckouts  int64            `json:"total_checkouts"`
	Committed       int64            `json:"committed"`
	OutOfStock      int64            `json:"out_of_stock"`
	OtherFailures   int64            `json:"other_failures"`
	RPS             float64          `json:"rps"`
	CheckoutLatency latencySummary   `json:"checkout_latency_ms"`
	StatusBreakdown map[string]int64 `json:"status_breakdown"`
	UnitsRequested  int64            `json:"units_requested"`
	StockAtStart    int              `json:"stock_at_start"`
}

type collector struct {
	mu        sync.Mutex
	latencies []float64
	statuses  map[string]int64
	committed int64
	oos       int64
	failed    int64
}

func newCollector() *collector {
	return &collector{statuses: make(map[string]int64)}
}

func (c *collector) record(latency time.Duration, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latencies = append(c.latencies, float64(latency.Microseconds())/1000.0)
	c.statuses[fmt.Sprintf("%d", status)]++
	switch {
	case status == http.StatusCreated:
		c.committed++
	case status == http.StatusBadRequest:
		c.oos++
	default:
		c.failed++
	}
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	percentile := func(p float64) float64 {
		idx := int(math.Ceil(p*float64(len(sorted)))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	}
	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(0.50),
		P95: percentile(0.95),
		P99: percentile(0.99),
	}
}

type client struct {
	base string
	http *http.Client
}

func (c *client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

type idResponse struct {
	ID int64 `json:"id"`
}

func seedCatalog(ctx context.Context, c *client, cfg config) (int64, error) {
	var author idResponse
	status, err := c.postJSON(ctx, "/authors", map[string]interface{}{"name": "Load Author"}, &author)
	if err != nil || status != http.StatusCreated {
		return 0, fmt.Errorf("create author: status=%d err=%v", status, err)
	}

	var book idResponse
	status, err = c.postJSON(ctx, "/books", map[string]interface{}{
		"title":       "Load Book",
		"author_id":   author.ID,
		"price_minor": cfg.priceMinor,
		"stock":       cfg.stock,
	}, &book)
	if err != nil || status != http.StatusCreated {
		return 0, fmt.Errorf("create book: status=%d err=%v", status, err)
	}
	return book.ID, nil
}

func runWorker(ctx context.Context, c *client, cfg config, worker int, bookID int64, jobs <-chan struct{}, stats *collector) error {
	var customer idResponse
	status, err := c.postJSON(ctx, "/customers", map[string]interface{}{
		"name":  fmt.Sprintf("load-%d", worker),
		"email": fmt.Sprintf("load-%d-%d@example.com", worker, time.Now().UnixNano()),
	}, &customer)
	if err != nil || status != http.StatusCreated {
		return fmt.Errorf("create customer: status=%d err=%v", status, err)
	}

	for range jobs {
		cartPath := fmt.Sprintf("/customers/%d/cart/items", customer.ID)
		if _, err := c.postJSON(ctx, cartPath, map[string]interface{}{
			"book_id": bookID,
			"qty":     cfg.qty,
		}, nil); err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}

		start := time.Now()
		status, err := c.postJSON(ctx, fmt.Sprintf("/customers/%d/orders", customer.ID), nil, nil)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		stats.record(time.Since(start), status)
	}
	return nil
}

func main() {
	cfg := config{}
	flag.StringVar(&cfg.addr, "addr", "http://localhost:8080", "bookstore API base URL")
	flag.IntVar(&cfg.total, "total", 1000, "total checkout attempts")
	flag.IntVar(&cfg.concurrency, "concurrency", 16, "concurrent workers")
	flag.IntVar(&cfg.qty, "qty", 1, "units per checkout")
	flag.IntVar(&cfg.stock, "stock", 500, "initial stock of the load book")
	flag.Int64Var(&cfg.priceMinor, "price-minor", 1000, "price of the load book in minor units")
	flag.DurationVar(&cfg.timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.StringVar(&cfg.outputPath, "output", "", "write JSON report to file (default stdout)")
	flag.Parse()

	ctx := context.Background()
	httpClient := &client{base: cfg.addr, http: &http.Client{Timeout: cfg.timeout}}

	bookID, err := seedCatalog(ctx, httpClient, cfg)
	if err != nil {
		fail("seed catalog: %v", err)
	}

	stats := newCollector()
	jobs := make(chan struct{}, cfg.total)
	for i := 0; i < cfg.total; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	startedAt := time.Now()
	var wg sync.WaitGroup
	errCh := make(chan error, cfg.concurrency)
	for i := 0; i < cfg.concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := runWorker(ctx, httpClient, cfg, worker, bookID, jobs, stats); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		fmt.Fprintf(os.Stderr, "worker error: %v\n", err)
	}

	elapsed := time.Since(startedAt)
	rep := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: elapsed.Seconds(),
		TotalCheckouts:  stats.committed + stats.oos + stats.failed,
		Committed:       stats.committed,
		OutOfStock:      stats.oos,
		OtherFailures:   stats.failed,
		RPS:             float64(len(stats.latencies)) / elapsed.Seconds(),
		CheckoutLatency: buildLatencySummary(stats.latencies),
		StatusBreakdown: stats.statuses,
		UnitsRequested:  int64(cfg.total) * int64(cfg.qty),
		StockAtStart:    cfg.stock,
	}

	raw, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fail("marshal report: %v", err)
	}
	if cfg.outputPath != "" {
		if err := os.WriteFile(cfg.outputPath, raw, 0o644); err != nil {
			fail("write report: %v", err)
		}
	} else {
		fmt.Println(string(raw))
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
