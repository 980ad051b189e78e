package probe

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/edupredict/internal/domain/prediction"
)

// Verify checks one exchange against the prediction contract and returns a
// description of every violation found.
func Verify(ex Exchange) []string {
	var out []string
	if ex.RequestID != "" && ex.EchoedID != ex.RequestID {
		out = append(out, fmt.Sprintf("request id %q echoed as %q", ex.RequestID, ex.EchoedID))
	}
	if ex.Status != StatusOK {
		return append(out, fmt.Sprintf("status %d: %s", ex.Status, ex.Error))
	}
	if ex.Result == nil {
		return append(out, "no result: "+ex.Error)
	}
	return append(out, verifyResult(*ex.Result)...)
}

func verifyResult(res Result) []string {
	var out []string
	labels := prediction.Labels()

	if !slices.Contains(labels, res.Label) {
		out = append(out, fmt.Sprintf("label %q is not a known class", res.Label))
	}
	if len(res.Probabilities) != len(labels) {
		return append(out, fmt.Sprintf("%d probabilities, want %d", len(res.Probabilities), len(labels)))
	}

	vals := make([]float64, len(res.Probabilities))
	sum := 0.0
	for i, p := range res.Probabilities {
		if p.Label != labels[i] {
			out = append(out, fmt.Sprintf("probability %d labelled %q, want %q", i, p.Label, labels[i]))
		}
		if p.Probability < 0 || p.Probability > 1 || math.IsNaN(p.Probability) {
			out = append(out, fmt.Sprintf("probability %q = %v outside [0, 1]", p.Label, p.Probability))
		}
		if !strings.HasSuffix(p.Percent, "%") {
			out = append(out, fmt.Sprintf("percent %q for %q has no %% sign", p.Percent, p.Label))
		}
		vals[i] = p.Probability
		sum += p.Probability
	}
	if math.Abs(sum-1) > ProbabilitySumTolerance {
		out = append(out, fmt.Sprintf("probabilities sum to %.9f", sum))
	}

	best := prediction.Argmax(vals)
	if res.ClassIndex != best {
		out = append(out, fmt.Sprintf("class index %d is not the argmax %d", res.ClassIndex, best))
	}
	if best >= 0 && best < len(labels) && res.Label != labels[best] {
		out = append(out, fmt.Sprintf("label %q is not the argmax label %q", res.Label, labels[best]))
	}
	if res.Icon != prediction.Icon(res.Label) {
		out = append(out, fmt.Sprintf("icon %q does not match label %q", res.Icon, res.Label))
	}
	return out
}
