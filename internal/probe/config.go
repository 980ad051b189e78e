package probe

import "time"

// Config holds configuration for a probe run
type Config struct {
	BaseURL    string        // Base URL of the service
	Count      int           // Number of records to send
	Seed       int64         // Seed for the random records
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON report of every exchange
	Verbose    bool          // Enable verbose logging
}

// Probability mirrors one class column of a prediction response
type Probability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Percent     string  `json:"percent"`
}

// Result mirrors a successful prediction response
type Result struct {
	Label         string        `json:"label"`
	Icon          string        `json:"icon"`
	ClassIndex    int           `json:"class_index"`
	Probabilities []Probability `json:"probabilities"`
}

// Exchange is one request sent by the probe and what came back
type Exchange struct {
	Index      int            `json:"index"`
	RequestID  string         `json:"request_id"`
	Record     map[string]any `json:"record"`
	Status     int            `json:"status"`
	EchoedID   string         `json:"echoed_id"`
	Result     *Result        `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	Violations []string       `json:"violations,omitempty"`
	Latency    time.Duration  `json:"latency_ns"`
}

// Stats holds probe statistics
type Stats struct {
	Sent       int
	Passed     int
	Failed     int
	Violations int
	ByLabel    map[string]int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
