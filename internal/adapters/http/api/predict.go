package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/prediction"
	"github.com/okian/edupredict/pkg/logger"
)

// PredictDependencies defines the interface for prediction requests.
type PredictDependencies interface {
	Predict(ctx context.Context, raw map[string]any) (prediction.Result, error)
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps         PredictDependencies
	maxBodyBytes int64
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies, maxBodyBytes int64) *PredictHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	raw, err := decodeObject(w, r, h.maxBodyBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Predict(r.Context(), raw)
	if err != nil {
		status, code := classify(err)
		switch {
		case status == http.StatusServiceUnavailable:
			writeError(w, status, code, WrapKind(op, ErrUnavailable, err))
		case status >= http.StatusInternalServerError:
			err = WrapKind(op, ErrInternal, err)
			logger.Get().Error(r.Context(), "prediction request failed",
				logger.String("requestID", RequestID(r.Context())),
				logger.Error(err),
			)
			writeError(w, status, code, err)
		default:
			writeError(w, status, code, Wrap(op, err))
		}
		return
	}

	writeJSON(w, http.StatusOK, resultResponse(res))
}

// decodeObject reads a single JSON object from the request body.
func decodeObject(w http.ResponseWriter, r *http.Request, limit int64) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty request body")
		}
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if dec.More() {
		return nil, errors.New("request body must contain a single JSON object")
	}
	return raw, nil
}

// classify maps a prediction error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, features.ErrMissingFeature):
		return http.StatusBadRequest, "missing_feature"
	case errors.Is(err, features.ErrOutOfDomain):
		return http.StatusBadRequest, "out_of_domain"
	case errors.Is(err, prediction.ErrPredictionInvocation):
		return http.StatusUnprocessableEntity, "prediction_failed"
	case errors.Is(err, prediction.ErrUnknownClassIndex):
		return http.StatusInternalServerError, "unknown_class"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
