package probe

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/pkg/logger"
)

// RoundTripRecord is the fixed literal record every run starts with.
// Its canonical vector is [5, 10, 5, 10, 1, 0, 6, 6, 120, 0].
func RoundTripRecord() map[string]any {
	return map[string]any{
		features.FirstSemApproved:  5,
		features.FirstSemGrade:     10.0,
		features.SecondSemApproved: 5,
		features.SecondSemGrade:    10.0,
		features.TuitionUpToDate:   1,
		features.ScholarshipHolder: 0,
		features.SecondSemEnrolled: 6,
		features.FirstSemEnrolled:  6,
		features.AdmissionGrade:    120.0,
		features.Displaced:         0,
	}
}

// approvedOf pairs each approved-units field with its enrolled-units field.
var approvedOf = map[string]string{
	features.FirstSemApproved:  features.FirstSemEnrolled,
	features.SecondSemApproved: features.SecondSemEnrolled,
}

// Generate returns count records: the round-trip record first, then random
// in-domain records drawn from seed. The same seed yields the same records.
func Generate(ctx context.Context, count int, seed int64) []map[string]any {
	if count <= 0 {
		return nil
	}
	logger.Get().Info(ctx, "generating records", logger.Int("count", count), logger.Any("seed", seed))

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible test data
	specs := features.Describe()

	records := make([]map[string]any, 0, count)
	records = append(records, RoundTripRecord())
	for len(records) < count {
		records = append(records, randomRecord(rng, specs))
	}
	return records
}

// randomRecord draws every field uniformly from its domain. Approved units
// never exceed enrolled units.
func randomRecord(rng *rand.Rand, specs []features.Spec) map[string]any {
	rec := make(map[string]any, len(specs))
	for _, s := range specs {
		switch s.Kind {
		case features.KindInteger:
			rec[s.Name] = int(s.Min) + rng.IntN(int(s.Max-s.Min)+1)
		case features.KindFlag:
			rec[s.Name] = rng.IntN(2)
		default:
			steps := int(math.Round((s.Max - s.Min) / s.Step))
			v := s.Min + float64(rng.IntN(steps+1))*s.Step
			rec[s.Name] = math.Round(v*10) / 10
		}
	}
	for approved, enrolled := range approvedOf {
		a, aok := rec[approved].(int)
		e, eok := rec[enrolled].(int)
		if aok && eok && a > e {
			rec[approved], rec[enrolled] = e, a
		}
	}
	return rec
}
