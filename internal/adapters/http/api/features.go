package api

import (
	"net/http"

	"github.com/okian/edupredict/internal/domain/features"
)

// FeaturesDependencies defines the interface for form metadata.
type FeaturesDependencies interface {
	Schema() []features.Spec
}

// FeaturesHandler handles feature metadata requests.
type FeaturesHandler struct {
	deps FeaturesDependencies
}

// NewFeaturesHandler creates a new features handler.
func NewFeaturesHandler(deps FeaturesDependencies) *FeaturesHandler {
	return &FeaturesHandler{deps: deps}
}

// featuresResponse mirrors the OpenAPI schema for GET /features.
type featuresResponse struct {
	Order  []string        `json:"order"`
	Fields []features.Spec `json:"fields"`
}

// HandleGetFeatures handles GET /features requests.
func (h *FeaturesHandler) HandleGetFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, featuresResponse{
		Order:  features.CanonicalOrder(),
		Fields: h.deps.Schema(),
	})
}
