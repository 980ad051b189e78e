// Package prediction turns classifier output into a human-readable result.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/edupredict/internal/domain/classifier"
	"github.com/okian/edupredict/internal/domain/features"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// sumTolerance bounds how far a probability row may stray from summing to 1.
const sumTolerance = 1e-6

// Probability is one class column of a result.
type Probability struct {
	Label   string  `json:"label"`
	Value   float64 `json:"probability"`
	Percent string  `json:"percent"`
}

// Result is the outcome of a single prediction. It is read-only.
type Result struct {
	Label         string        `json:"label"`
	Icon          string        `json:"icon"`
	ClassIndex    int           `json:"class_index"`
	Probabilities []Probability `json:"probabilities"`
}

// Option applies a configuration option to the Interpreter.
type Option func(*Interpreter)

// WithLanguage renders percentages using the number format of tag.
func WithLanguage(tag language.Tag) Option {
	return func(in *Interpreter) {
		in.printer = message.NewPrinter(tag)
	}
}

// Interpreter invokes the classifier and interprets its output.
// It holds no per-request state and is safe for concurrent use.
type Interpreter struct {
	clf     classifier.Classifier
	printer *message.Printer
}

// NewInterpreter creates an interpreter over an already loaded classifier.
func NewInterpreter(clf classifier.Classifier, opts ...Option) *Interpreter {
	in := &Interpreter{
		clf:     clf,
		printer: message.NewPrinter(language.English),
	}

	// Apply all options
	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Interpret predicts the outcome for rec.
//
// The class with the highest probability wins; ties go to the lowest index.
// Failures are never retried: the same input fails the same way.
func (in *Interpreter) Interpret(ctx context.Context, rec features.Record) (Result, error) {
	if in.clf == nil {
		return Result{}, &InvocationError{Cause: errors.New("no classifier loaded")}
	}
	out, err := in.clf.PredictProba(ctx, [][]float64{rec.Vector()})
	if err != nil {
		return Result{}, &InvocationError{Cause: err}
	}
	if len(out) != 1 || len(out[0]) == 0 {
		return Result{}, &InvocationError{Cause: fmt.Errorf("unexpected output shape (%d rows)", len(out))}
	}
	proba := out[0]
	if len(proba) < len(classIndexMap) {
		return Result{}, &InvocationError{Cause: fmt.Errorf("%d probability columns, want at least %d", len(proba), len(classIndexMap))}
	}
	sum := 0.0
	for i, p := range proba {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Result{}, &InvocationError{Cause: fmt.Errorf("probability %d is not finite", i)}
		}
		if p < 0 || p > 1 {
			return Result{}, &InvocationError{Cause: fmt.Errorf("probability %d = %v outside [0, 1]", i, p)}
		}
		sum += p
	}
	if math.Abs(sum-1) > sumTolerance {
		return Result{}, &InvocationError{Cause: fmt.Errorf("probabilities sum to %v, want 1", sum)}
	}

	idx := Argmax(proba)
	label, ok := Label(idx)
	if !ok {
		return Result{}, &UnknownClassIndexError{Index: idx}
	}

	probs := make([]Probability, len(proba))
	for i, p := range proba {
		probs[i] = Probability{
			Label:   displayLabel(i),
			Value:   p,
			Percent: in.Percent(p),
		}
	}
	return Result{
		Label:         label,
		Icon:          Icon(label),
		ClassIndex:    idx,
		Probabilities: probs,
	}, nil
}

// Percent formats a probability as a percentage with two decimals.
func (in *Interpreter) Percent(p float64) string {
	return in.printer.Sprintf("%.2f%%", p*100)
}

// Argmax returns the index of the largest value, preferring the lowest
// index on ties. It returns -1 for an empty slice.
func Argmax(vals []float64) int {
	best := -1
	for i, v := range vals {
		if best < 0 || v > vals[best] {
			best = i
		}
	}
	return best
}
