package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/edupredict/pkg/logger"
)

// requestIDHeader is the correlation header the service echoes.
const requestIDHeader = "X-Request-ID"

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body and a request id
func (c *HTTPClient) Post(ctx context.Context, url, requestID string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	return c.client.Do(req)
}

// submitRecords posts records concurrently and verifies every answer.
// Exchanges are returned in record order.
func submitRecords(ctx context.Context, config *Config, records []map[string]any) []Exchange {
	log := logger.Get()
	log.Info(ctx, "submitting records", logger.Int("records", len(records)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/predict"
	exchanges := make([]Exchange, len(records))

	var (
		submitted  int64
		lastReport atomic.Int64
	)

	// Create worker pool
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range indexChan {
				if ctx.Err() != nil {
					exchanges[idx] = Exchange{Index: idx, Record: records[idx], Error: ctx.Err().Error()}
					continue
				}
				exchanges[idx] = submitSingle(ctx, client, url, idx, records[idx])

				// Progress reporting
				total := atomic.AddInt64(&submitted, 1)
				now := time.Now().UnixNano()
				last := lastReport.Load()
				if config.Verbose && now-last >= int64(ProgressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress", logger.Int("submitted", int(total)), logger.Int("total", len(records)))
				}
			}
		}()
	}

	// Send indexes to workers
	go func() {
		defer close(indexChan)
		for i := range records {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Records never handed to a worker
	for i := range exchanges {
		if exchanges[i].Record == nil {
			exchanges[i] = Exchange{Index: i, Record: records[i], Error: "not sent"}
		}
	}
	return exchanges
}

// submitSingle posts one record and verifies the response
func submitSingle(ctx context.Context, client *HTTPClient, url string, idx int, record map[string]any) Exchange {
	ex := Exchange{Index: idx, RequestID: uuid.NewString(), Record: record}

	start := time.Now()
	resp, err := client.Post(ctx, url, ex.RequestID, record)
	if err != nil {
		ex.Error = err.Error()
		return ex
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	ex.Latency = time.Since(start)
	if err != nil {
		ex.Error = err.Error()
		return ex
	}

	ex.Status = resp.StatusCode
	ex.EchoedID = resp.Header.Get(requestIDHeader)
	if resp.StatusCode == StatusOK {
		var res Result
		if err := json.Unmarshal(body, &res); err != nil {
			ex.Error = "undecodable result: " + err.Error()
		} else {
			ex.Result = &res
		}
	} else {
		ex.Error = string(bytes.TrimSpace(body))
	}

	ex.Violations = Verify(ex)
	return ex
}
