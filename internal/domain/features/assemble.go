package features

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Assemble builds a Record from raw values keyed by column name.
//
// Lookup is by name, so the order of keys in raw never matters. Every field
// is required: an absent or null value fails with *MissingFeatureError and is
// never defaulted. Values outside their domain fail with *DomainError even if
// the form already constrained them. Fields are checked in canonical order,
// so the first failing field is reported deterministically.
func Assemble(raw map[string]any) (Record, error) {
	vals := make(map[string]float64, Count)
	for _, name := range canonicalOrder {
		v, ok := raw[name]
		if !ok || v == nil {
			return Record{}, &MissingFeatureError{Field: name}
		}
		spec := specByName[name]
		f, err := coerce(spec, v)
		if err != nil {
			return Record{}, err
		}
		if err := spec.check(f); err != nil {
			return Record{}, err
		}
		vals[name] = f
	}

	return Record{
		FirstSemApproved:  int(vals[FirstSemApproved]),
		FirstSemGrade:     vals[FirstSemGrade],
		FirstSemEnrolled:  int(vals[FirstSemEnrolled]),
		SecondSemApproved: int(vals[SecondSemApproved]),
		SecondSemGrade:    vals[SecondSemGrade],
		SecondSemEnrolled: int(vals[SecondSemEnrolled]),
		AdmissionGrade:    vals[AdmissionGrade],
		TuitionUpToDate:   vals[TuitionUpToDate] == 1,
		ScholarshipHolder: vals[ScholarshipHolder] == 1,
		Displaced:         vals[Displaced] == 1,
	}, nil
}

// coerce turns a decoded JSON/form value into a float64.
// Booleans are only accepted for flag fields.
func coerce(spec Spec, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, &DomainError{Field: spec.Name, Value: v, Reason: "not a number"}
		}
		return f, nil
	case bool:
		if spec.Kind != KindFlag {
			return 0, &DomainError{Field: spec.Name, Value: v, Reason: "must be a number"}
		}
		return flag(x), nil
	case string:
		s := strings.TrimSpace(x)
		if spec.Kind == KindFlag {
			switch strings.ToLower(s) {
			case "true":
				return 1, nil
			case "false":
				return 0, nil
			}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &DomainError{Field: spec.Name, Value: v, Reason: "not a number"}
		}
		return f, nil
	default:
		return 0, &DomainError{Field: spec.Name, Value: v, Reason: "unsupported value type"}
	}
}

func formatRange(min, max float64) string {
	return "[" + strconv.FormatFloat(min, 'f', -1, 64) + ", " + strconv.FormatFloat(max, 'f', -1, 64) + "]"
}
