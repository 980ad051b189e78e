package features_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/edupredict/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

// roundTripInput is the fixed literal record used across tests.
func roundTripInput() map[string]any {
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

func TestCanonicalOrder(t *testing.T) {
	Convey("Given the canonical column order", t, func() {
		order := features.CanonicalOrder()

		Convey("Then it should list the ten columns the model was trained on", func() {
			So(order, ShouldResemble, []string{
				"Curricular_units_2nd_sem_approved",
				"Curricular_units_2nd_sem_grade",
				"Curricular_units_1st_sem_approved",
				"Curricular_units_1st_sem_grade",
				"Tuition_fees_up_to_date",
				"Scholarship_holder",
				"Curricular_units_2nd_sem_enrolled",
				"Curricular_units_1st_sem_enrolled",
				"Admission_grade",
				"Displaced",
			})
		})

		Convey("And mutating the returned slice should not affect later calls", func() {
			order[0] = "tampered"
			So(features.CanonicalOrder()[0], ShouldEqual, features.SecondSemApproved)
		})
	})
}

func TestAssemble(t *testing.T) {
	Convey("Given a complete set of raw values", t, func() {
		raw := roundTripInput()

		Convey("When assembling the record", func() {
			rec, err := features.Assemble(raw)

			Convey("Then it should serialize in canonical order", func() {
				So(err, ShouldBeNil)
				So(rec.Vector(), ShouldResemble, []float64{5, 10, 5, 10, 1, 0, 6, 6, 120, 0})
				So(len(rec.Vector()), ShouldEqual, features.Count)
			})

			Convey("And repeated serialization should be identical", func() {
				first := rec.Vector()
				for i := 0; i < 100; i++ {
					again, err := features.Assemble(roundTripInput())
					So(err, ShouldBeNil)
					So(again.Vector(), ShouldResemble, first)
				}
			})
		})

		Convey("When the same values are supplied under a different insertion order", func() {
			distinct := map[string]any{
				features.Displaced:         1,
				features.AdmissionGrade:    150.5,
				features.FirstSemEnrolled:  7,
				features.SecondSemEnrolled: 8,
				features.ScholarshipHolder: 1,
				features.TuitionUpToDate:   0,
				features.SecondSemGrade:    12.5,
				features.SecondSemApproved: 4,
				features.FirstSemGrade:     13.25,
				features.FirstSemApproved:  3,
			}
			shuffled := make(map[string]any, len(distinct))
			for _, name := range []string{
				features.FirstSemApproved, features.Displaced, features.SecondSemGrade,
				features.AdmissionGrade, features.TuitionUpToDate, features.FirstSemGrade,
				features.SecondSemEnrolled, features.ScholarshipHolder, features.SecondSemApproved,
				features.FirstSemEnrolled,
			} {
				shuffled[name] = distinct[name]
			}

			a, errA := features.Assemble(distinct)
			b, errB := features.Assemble(shuffled)

			Convey("Then the output order should be driven by names only", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Vector(), ShouldResemble, []float64{4, 12.5, 3, 13.25, 0, 1, 8, 7, 150.5, 1})
				So(b.Vector(), ShouldResemble, a.Vector())
			})
		})

		Convey("When Displaced is absent", func() {
			delete(raw, features.Displaced)
			rec, err := features.Assemble(raw)

			Convey("Then it should fail naming the missing field", func() {
				So(rec, ShouldResemble, features.Record{})
				So(errors.Is(err, features.ErrMissingFeature), ShouldBeTrue)
				var missing *features.MissingFeatureError
				So(errors.As(err, &missing), ShouldBeTrue)
				So(missing.Field, ShouldEqual, "Displaced")
				So(err.Error(), ShouldContainSubstring, "Displaced")
			})
		})

		Convey("When a field is explicitly null", func() {
			raw[features.AdmissionGrade] = nil
			_, err := features.Assemble(raw)

			Convey("Then it should be treated as missing", func() {
				var missing *features.MissingFeatureError
				So(errors.As(err, &missing), ShouldBeTrue)
				So(missing.Field, ShouldEqual, features.AdmissionGrade)
			})
		})

		Convey("When several fields are absent", func() {
			delete(raw, features.Displaced)
			delete(raw, features.SecondSemGrade)
			_, err := features.Assemble(raw)

			Convey("Then the first one in canonical order should be reported", func() {
				var missing *features.MissingFeatureError
				So(errors.As(err, &missing), ShouldBeTrue)
				So(missing.Field, ShouldEqual, features.SecondSemGrade)
			})
		})

		Convey("When values arrive as decoded JSON", func() {
			var decoded map[string]any
			body := `{
				"Curricular_units_1st_sem_approved": 5,
				"Curricular_units_1st_sem_grade": 10.0,
				"Curricular_units_1st_sem_enrolled": 6,
				"Curricular_units_2nd_sem_approved": 5,
				"Curricular_units_2nd_sem_grade": 10.0,
				"Curricular_units_2nd_sem_enrolled": 6,
				"Admission_grade": 120.0,
				"Tuition_fees_up_to_date": true,
				"Scholarship_holder": false,
				"Displaced": 0
			}`
			So(json.Unmarshal([]byte(body), &decoded), ShouldBeNil)
			rec, err := features.Assemble(decoded)

			Convey("Then booleans should be accepted for flags", func() {
				So(err, ShouldBeNil)
				So(rec.Vector(), ShouldResemble, []float64{5, 10, 5, 10, 1, 0, 6, 6, 120, 0})
			})
		})

		Convey("When numeric values arrive as strings", func() {
			raw[features.AdmissionGrade] = " 133.7 "
			raw[features.Displaced] = "true"
			rec, err := features.Assemble(raw)

			Convey("Then they should be coerced", func() {
				So(err, ShouldBeNil)
				So(rec.AdmissionGrade, ShouldEqual, 133.7)
				So(rec.Displaced, ShouldBeTrue)
			})
		})
	})
}

func TestAssembleDomain(t *testing.T) {
	Convey("Given values outside their declared domain", t, func() {
		cases := []struct {
			field string
			value any
		}{
			{features.FirstSemApproved, 31},
			{features.FirstSemApproved, -1},
			{features.FirstSemApproved, 2.5},
			{features.SecondSemGrade, 20.1},
			{features.AdmissionGrade, 200.5},
			{features.AdmissionGrade, math.NaN()},
			{features.AdmissionGrade, math.Inf(1)},
			{features.TuitionUpToDate, 2},
			{features.ScholarshipHolder, "maybe"},
			{features.SecondSemEnrolled, true},
			{features.FirstSemGrade, []int{1}},
		}

		for _, c := range cases {
			raw := roundTripInput()
			raw[c.field] = c.value
			_, err := features.Assemble(raw)

			So(errors.Is(err, features.ErrOutOfDomain), ShouldBeTrue)
			var domainErr *features.DomainError
			So(errors.As(err, &domainErr), ShouldBeTrue)
			So(domainErr.Field, ShouldEqual, c.field)
		}
	})

	Convey("Given values on the edges of their domain", t, func() {
		raw := roundTripInput()
		raw[features.FirstSemApproved] = 30
		raw[features.SecondSemApproved] = 0
		raw[features.FirstSemGrade] = 20.0
		raw[features.SecondSemGrade] = 0.0
		raw[features.AdmissionGrade] = 200.0
		raw[features.FirstSemEnrolled] = 30.0

		Convey("Then they should be accepted", func() {
			rec, err := features.Assemble(raw)
			So(err, ShouldBeNil)
			So(rec.FirstSemApproved, ShouldEqual, 30)
			So(rec.FirstSemEnrolled, ShouldEqual, 30)
			So(rec.AdmissionGrade, ShouldEqual, 200.0)
		})
	})
}

func TestRecord(t *testing.T) {
	Convey("Given a record built in code", t, func() {
		rec := features.Record{
			FirstSemApproved:  5,
			FirstSemGrade:     10,
			FirstSemEnrolled:  6,
			SecondSemApproved: 5,
			SecondSemGrade:    10,
			SecondSemEnrolled: 6,
			AdmissionGrade:    120,
			TuitionUpToDate:   true,
		}

		Convey("Then Validate should accept it", func() {
			So(rec.Validate(), ShouldBeNil)
		})

		Convey("And Map should key values by column name", func() {
			m := rec.Map()
			So(len(m), ShouldEqual, features.Count)
			So(m[features.TuitionUpToDate], ShouldEqual, 1)
			So(m[features.Displaced], ShouldEqual, 0)
			So(m[features.AdmissionGrade], ShouldEqual, 120)
		})

		Convey("And a map produced by Map should assemble back to the same record", func() {
			raw := make(map[string]any)
			for k, v := range rec.Map() {
				raw[k] = v
			}
			again, err := features.Assemble(raw)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, rec)
		})

		Convey("When a field is out of range", func() {
			rec.SecondSemEnrolled = 99

			Convey("Then Validate should reject it", func() {
				err := rec.Validate()
				So(errors.Is(err, features.ErrOutOfDomain), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, features.SecondSemEnrolled)
			})
		})
	})
}

func TestDescribe(t *testing.T) {
	Convey("Given the field descriptions", t, func() {
		specs := features.Describe()

		Convey("Then every column should be described exactly once", func() {
			So(len(specs), ShouldEqual, features.Count)
			seen := map[string]bool{}
			for _, s := range specs {
				seen[s.Name] = true
			}
			for _, name := range features.CanonicalOrder() {
				So(seen[name], ShouldBeTrue)
			}
		})

		Convey("And defaults should lie within each domain", func() {
			for _, s := range specs {
				So(s.Default, ShouldBeBetweenOrEqual, s.Min, s.Max)
			}
			So(features.Defaults().Validate(), ShouldBeNil)
		})

		Convey("And the form should start with the 1st semester fields", func() {
			So(specs[0].Name, ShouldEqual, features.FirstSemApproved)
			So(specs[0].Kind, ShouldEqual, features.KindInteger)
			So(specs[len(specs)-1].Kind, ShouldEqual, features.KindFlag)
		})
	})
}
