// Package features assembles the classifier input record from raw form values.
//
// The classifier was trained on a fixed column order that has nothing to do
// with the order fields appear on the form. Record keeps named fields and
// Vector is the single place that knows the column order.
package features

// Column names as the trained classifier knows them.
const (
	FirstSemApproved  = "Curricular_units_1st_sem_approved"
	FirstSemGrade     = "Curricular_units_1st_sem_grade"
	FirstSemEnrolled  = "Curricular_units_1st_sem_enrolled"
	SecondSemApproved = "Curricular_units_2nd_sem_approved"
	SecondSemGrade    = "Curricular_units_2nd_sem_grade"
	SecondSemEnrolled = "Curricular_units_2nd_sem_enrolled"
	AdmissionGrade    = "Admission_grade"
	TuitionUpToDate   = "Tuition_fees_up_to_date"
	ScholarshipHolder = "Scholarship_holder"
	Displaced         = "Displaced"
)

// Count is the width of the classifier input vector.
const Count = 10

// canonicalOrder is the column order of the trained model artifact.
var canonicalOrder = [Count]string{
	SecondSemApproved,
	SecondSemGrade,
	FirstSemApproved,
	FirstSemGrade,
	TuitionUpToDate,
	ScholarshipHolder,
	SecondSemEnrolled,
	FirstSemEnrolled,
	AdmissionGrade,
	Displaced,
}

// CanonicalOrder returns a copy of the column names in classifier order.
func CanonicalOrder() []string {
	out := make([]string, Count)
	copy(out, canonicalOrder[:])
	return out
}

// Record is one student's input to a single prediction request.
// It is built fresh per request and never mutated afterwards.
type Record struct {
	FirstSemApproved  int
	FirstSemGrade     float64
	FirstSemEnrolled  int
	SecondSemApproved int
	SecondSemGrade    float64
	SecondSemEnrolled int
	AdmissionGrade    float64
	TuitionUpToDate   bool
	ScholarshipHolder bool
	Displaced         bool
}

// Vector serializes the record in canonical classifier order.
func (r Record) Vector() []float64 {
	return []float64{
		float64(r.SecondSemApproved),
		r.SecondSemGrade,
		float64(r.FirstSemApproved),
		r.FirstSemGrade,
		flag(r.TuitionUpToDate),
		flag(r.ScholarshipHolder),
		float64(r.SecondSemEnrolled),
		float64(r.FirstSemEnrolled),
		r.AdmissionGrade,
		flag(r.Displaced),
	}
}

// Map returns the record keyed by column name, flags encoded as 0/1.
func (r Record) Map() map[string]float64 {
	vec := r.Vector()
	out := make(map[string]float64, Count)
	for i, name := range canonicalOrder {
		out[name] = vec[i]
	}
	return out
}

// Validate re-checks every field of a record built in code against its domain.
func (r Record) Validate() error {
	for i, v := range r.Vector() {
		spec := specByName[canonicalOrder[i]]
		if err := spec.check(v); err != nil {
			return err
		}
	}
	return nil
}

// Defaults returns the values the form starts with.
func Defaults() Record {
	return Record{
		FirstSemApproved:  5,
		FirstSemGrade:     10.0,
		FirstSemEnrolled:  6,
		SecondSemApproved: 5,
		SecondSemGrade:    10.0,
		SecondSemEnrolled: 6,
		AdmissionGrade:    120.0,
		TuitionUpToDate:   true,
		ScholarshipHolder: true,
		Displaced:         true,
	}
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
