// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/edupredict/internal/domain/classifier"
	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/prediction"
	"github.com/okian/edupredict/pkg/logger"
	"github.com/okian/edupredict/pkg/metrics"
	"golang.org/x/text/language"
)

// ErrNotStarted is returned by Predict before Start succeeded.
var ErrNotStarted = errors.New("service not started")

// Error kinds reported to metrics and the HTTP layer.
const (
	KindMissingFeature   = "missing_feature"
	KindOutOfDomain      = "out_of_domain"
	KindPredictionFailed = "prediction_failed"
	KindUnknownClass     = "unknown_class"
	KindNotStarted       = "not_started"
	KindCancelled        = "cancelled"
	KindInternal         = "internal"
)

// Service assembles feature records and turns classifier output into results.
type Service struct {
	mu sync.RWMutex

	// Core components
	clf         classifier.Classifier
	injected    bool
	interpreter *prediction.Interpreter

	// Configuration
	modelPath string
	modelName string
	lang      language.Tag

	// State
	started   bool
	startedAt time.Time

	predictions atomic.Int64
	failures    atomic.Int64
	byLabel     map[string]int64
	byKind      map[string]int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelPath sets the classifier artifact loaded by Start.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithClassifier injects a ready classifier; Start then skips artifact loading.
func WithClassifier(clf classifier.Classifier, name string) Option {
	return func(s *Service) {
		if clf != nil {
			s.clf = clf
			s.injected = true
			s.modelName = name
		}
	}
}

// WithLanguage sets the locale used for percentage strings.
func WithLanguage(tag language.Tag) Option {
	return func(s *Service) {
		s.lang = tag
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelPath: "./models/student_logreg.yaml",
		lang:      language.English,
		byLabel:   make(map[string]int64, len(prediction.Labels())),
		byKind:    make(map[string]int64),
		logger:    nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the classifier artifact and prepares the interpreter.
// A load failure is returned as *classifier.LoadError.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.injected {
		s.modelPath = ""
	} else {
		s.logger.Info(ctx, "loading classifier artifact", logger.String("path", s.modelPath))
		pipeline, err := classifier.Load(s.modelPath,
			classifier.WithColumns(features.CanonicalOrder()),
			classifier.WithClasses(prediction.Labels()),
		)
		if err != nil {
			s.logger.Error(ctx, "classifier artifact rejected",
				logger.String("path", s.modelPath),
				logger.Error(err),
			)
			return err
		}
		s.clf = pipeline
		s.modelName = pipeline.Name
	}

	s.interpreter = prediction.NewInterpreter(s.clf, prediction.WithLanguage(s.lang))
	metrics.SetModelInfo(s.modelName, s.modelPath, strings.Join(prediction.Labels(), ","))

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "prediction service started",
		logger.String("model", s.modelName),
		logger.String("language", s.lang.String()),
		logger.Int("features", features.Count),
	)

	return nil
}

// Stop marks the service as stopped. The loaded classifier is kept.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped",
		logger.Int("predictions", int(s.predictions.Load())),
		logger.Int("failures", int(s.failures.Load())),
	)
}

// Predict assembles raw form values and classifies the record.
// On error the returned Result is the zero value.
func (s *Service) Predict(ctx context.Context, raw map[string]any) (prediction.Result, error) {
	s.mu.RLock()
	started, interpreter, log := s.started, s.interpreter, s.logger
	s.mu.RUnlock()

	if !started {
		s.fail(KindNotStarted)
		return prediction.Result{}, ErrNotStarted
	}

	start := time.Now()
	rec, err := features.Assemble(raw)
	if err != nil {
		kind := ErrorKind(err)
		s.fail(kind)
		metrics.RecordErrorLatency("assembler", kind, msSince(start))
		log.Warn(ctx, "feature record rejected", logger.String("kind", kind), logger.Error(err))
		return prediction.Result{}, err
	}

	res, err := interpreter.Interpret(ctx, rec)
	if err != nil {
		kind := ErrorKind(err)
		if kind == KindCancelled {
			s.cancelled()
			log.Warn(ctx, "prediction abandoned by caller", logger.Error(err))
			return prediction.Result{}, err
		}
		s.fail(kind)
		metrics.RecordErrorLatency("interpreter", kind, msSince(start))
		log.Error(ctx, "prediction failed", logger.String("kind", kind), logger.Error(err))
		return prediction.Result{}, err
	}

	s.predictions.Add(1)
	s.mu.Lock()
	s.byLabel[res.Label]++
	s.mu.Unlock()
	metrics.RecordPrediction(res.Label)
	metrics.RecordPredictionLatency(msSince(start))

	log.Debug(ctx, "prediction served",
		logger.String("label", res.Label),
		logger.Int("class_index", res.ClassIndex),
		logger.Any("features", rec.Map()),
	)
	return res, nil
}

// Schema returns form metadata for every feature.
func (s *Service) Schema() []features.Spec {
	return features.Describe()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byLabel := make(map[string]int64, len(s.byLabel))
	for k, v := range s.byLabel {
		byLabel[k] = v
	}
	byKind := make(map[string]int64, len(s.byKind))
	for k, v := range s.byKind {
		byKind[k] = v
	}

	stats := map[string]interface{}{
		"started":     s.started,
		"model":       s.modelName,
		"modelPath":   s.modelPath,
		"language":    s.lang.String(),
		"features":    features.CanonicalOrder(),
		"classes":     prediction.Labels(),
		"predictions": s.predictions.Load(),
		"failures":    s.failures.Load(),
		"byLabel":     byLabel,
		"byErrorKind": byKind,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}

	return stats
}

func (s *Service) fail(kind string) {
	s.failures.Add(1)
	s.mu.Lock()
	s.byKind[kind]++
	s.mu.Unlock()
	metrics.RecordPredictionError(kind)
}

// cancelled counts a request the caller gave up on. It is not a failure.
func (s *Service) cancelled() {
	s.mu.Lock()
	s.byKind[KindCancelled]++
	s.mu.Unlock()
	metrics.RecordPredictionError(KindCancelled)
}

// ErrorKind maps a Predict error to its stable kind string.
// Cancellation wins over the error that carries it.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, features.ErrMissingFeature):
		return KindMissingFeature
	case errors.Is(err, features.ErrOutOfDomain):
		return KindOutOfDomain
	case errors.Is(err, prediction.ErrPredictionInvocation):
		return KindPredictionFailed
	case errors.Is(err, prediction.ErrUnknownClassIndex):
		return KindUnknownClass
	case errors.Is(err, ErrNotStarted):
		return KindNotStarted
	default:
		return KindInternal
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
