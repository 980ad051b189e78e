package features

import (
	"math"
)

// Kind is the semantic type of a field.
type Kind string

const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindFlag    Kind = "flag"
)

// Spec describes a single form field and its accepted domain.
type Spec struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Help    string  `json:"help"`
	Kind    Kind    `json:"kind"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Form order; differs from canonicalOrder on purpose.
var specs = []Spec{
	{Name: FirstSemApproved, Label: "Curricular units 1st sem (approved)", Help: "Units approved in the 1st semester (0-30).", Kind: KindInteger, Min: 0, Max: 30, Step: 1},
	{Name: FirstSemGrade, Label: "Curricular units 1st sem (grade)", Help: "Average grade in the 1st semester (0-20).", Kind: KindFloat, Min: 0, Max: 20, Step: 0.1},
	{Name: SecondSemApproved, Label: "Curricular units 2nd sem (approved)", Help: "Units approved in the 2nd semester (0-30).", Kind: KindInteger, Min: 0, Max: 30, Step: 1},
	{Name: SecondSemGrade, Label: "Curricular units 2nd sem (grade)", Help: "Average grade in the 2nd semester (0-20).", Kind: KindFloat, Min: 0, Max: 20, Step: 0.1},
	{Name: FirstSemEnrolled, Label: "Curricular units 1st sem (enrolled)", Help: "Units enrolled in the 1st semester (0-30).", Kind: KindInteger, Min: 0, Max: 30, Step: 1},
	{Name: SecondSemEnrolled, Label: "Curricular units 2nd sem (enrolled)", Help: "Units enrolled in the 2nd semester (0-30).", Kind: KindInteger, Min: 0, Max: 30, Step: 1},
	{Name: AdmissionGrade, Label: "Admission grade", Help: "Grade at admission (0-200).", Kind: KindFloat, Min: 0, Max: 200, Step: 0.1},
	{Name: TuitionUpToDate, Label: "Tuition fees up to date", Help: "Whether tuition fees are paid up.", Kind: KindFlag, Min: 0, Max: 1, Step: 1},
	{Name: ScholarshipHolder, Label: "Scholarship holder", Help: "Whether the student holds a scholarship.", Kind: KindFlag, Min: 0, Max: 1, Step: 1},
	{Name: Displaced, Label: "Displaced", Help: "Whether the student is displaced from their home region.", Kind: KindFlag, Min: 0, Max: 1, Step: 1},
}

var specByName = func() map[string]Spec {
	m := make(map[string]Spec, len(specs))
	for _, s := range specs {
		m[s.Name] = s
	}
	return m
}()

// Describe returns the field specs in form order with defaults filled in.
func Describe() []Spec {
	defaults := Defaults().Map()
	out := make([]Spec, len(specs))
	for i, s := range specs {
		s.Default = defaults[s.Name]
		out[i] = s
	}
	return out
}

// check validates a numeric value against the spec's kind and range.
func (s Spec) check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &DomainError{Field: s.Name, Value: v, Reason: "must be a finite number"}
	}
	switch s.Kind {
	case KindInteger:
		if v != math.Trunc(v) {
			return &DomainError{Field: s.Name, Value: v, Reason: "must be a whole number"}
		}
	case KindFlag:
		if v != 0 && v != 1 {
			return &DomainError{Field: s.Name, Value: v, Reason: "must be 0 or 1"}
		}
		return nil
	}
	if v < s.Min || v > s.Max {
		return &DomainError{Field: s.Name, Value: v, Reason: "out of range " + formatRange(s.Min, s.Max)}
	}
	return nil
}
