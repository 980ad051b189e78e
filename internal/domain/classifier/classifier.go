// Package classifier defines the contract of the trained outcome model and
// provides the logistic-regression pipeline the service ships with.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrStartupLoad   = errors.New("classifier artifact load failed")
	ErrShapeMismatch = errors.New("input shape mismatch")
)

// Classifier maps rows of feature vectors to per-class probabilities.
// Each output row has one column per class, in the artifact's class order.
type Classifier interface {
	PredictProba(ctx context.Context, X [][]float64) ([][]float64, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, X [][]float64) ([][]float64, error)

// PredictProba calls f.
func (f Func) PredictProba(ctx context.Context, X [][]float64) ([][]float64, error) {
	return f(ctx, X)
}

// Scaler standardizes each column as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `yaml:"mean" json:"mean"`
	Scale []float64 `yaml:"scale" json:"scale"`
}

// LogisticPipeline is a standard scaler followed by a multinomial logistic
// regression. It is immutable once loaded and safe for concurrent use.
type LogisticPipeline struct {
	Name      string      `yaml:"name" json:"name"`
	Columns   []string    `yaml:"columns" json:"columns"`
	Classes   []string    `yaml:"classes" json:"classes"`
	Scaler    Scaler      `yaml:"scaler" json:"scaler"`
	Coef      [][]float64 `yaml:"coef" json:"coef"`
	Intercept []float64   `yaml:"intercept" json:"intercept"`

	// Path is set by Load.
	Path string `yaml:"-" json:"-"`
}

// PredictProba standardizes every row, computes one logit per class and
// returns the softmax of the logits.
func (p *LogisticPipeline) PredictProba(ctx context.Context, X [][]float64) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	width := len(p.Columns)
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), width)
		}
		logits := make([]float64, len(p.Classes))
		for k := range p.Classes {
			z := p.Intercept[k]
			for j, x := range row {
				z += p.Coef[k][j] * p.standardize(j, x)
			}
			logits[k] = z
		}
		out[i] = softmax(logits)
	}
	return out, nil
}

func (p *LogisticPipeline) standardize(j int, x float64) float64 {
	scale := p.Scaler.Scale[j]
	if scale == 0 {
		scale = 1
	}
	return (x - p.Scaler.Mean[j]) / scale
}

// validate checks the internal dimensions of a decoded artifact.
func (p *LogisticPipeline) validate() error {
	width := len(p.Columns)
	switch {
	case width == 0:
		return errors.New("no columns")
	case len(p.Classes) == 0:
		return errors.New("no classes")
	case len(p.Scaler.Mean) != width:
		return fmt.Errorf("scaler mean has %d entries, want %d", len(p.Scaler.Mean), width)
	case len(p.Scaler.Scale) != width:
		return fmt.Errorf("scaler scale has %d entries, want %d", len(p.Scaler.Scale), width)
	case len(p.Coef) != len(p.Classes):
		return fmt.Errorf("coef has %d rows, want %d", len(p.Coef), len(p.Classes))
	case len(p.Intercept) != len(p.Classes):
		return fmt.Errorf("intercept has %d entries, want %d", len(p.Intercept), len(p.Classes))
	}
	for k, row := range p.Coef {
		if len(row) != width {
			return fmt.Errorf("coef row %d has %d entries, want %d", k, len(row), width)
		}
		if !finite(row...) {
			return fmt.Errorf("coef row %d is not finite", k)
		}
	}
	if !finite(p.Intercept...) || !finite(p.Scaler.Mean...) || !finite(p.Scaler.Scale...) {
		return errors.New("non-finite parameters")
	}
	return nil
}

// softmax subtracts the max logit first so large logits cannot overflow.
func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, z := range logits {
		if z > maxLogit {
			maxLogit = z
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		out[i] = math.Exp(z - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
