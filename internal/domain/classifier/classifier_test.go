package classifier_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/edupredict/internal/domain/classifier"
	"github.com/okian/edupredict/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

const shippedArtifact = "../../../models/student_logreg.yaml"

var classLabels = []string{"Dropout", "Enrolled", "Graduate"}

func uniformPipeline() *classifier.LogisticPipeline {
	return &classifier.LogisticPipeline{
		Name:      "uniform",
		Columns:   []string{"a", "b"},
		Classes:   []string{"x", "y", "z"},
		Scaler:    classifier.Scaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
		Coef:      [][]float64{{0, 0}, {0, 0}, {0, 0}},
		Intercept: []float64{0, math.Ln2, 0},
	}
}

func sumOf(row []float64) float64 {
	var s float64
	for _, v := range row {
		s += v
	}
	return s
}

func TestLogisticPipeline_PredictProba(t *testing.T) {
	Convey("Given a pipeline whose logits only depend on the intercept", t, func() {
		p := uniformPipeline()

		Convey("When predicting a single row", func() {
			out, err := p.PredictProba(context.Background(), [][]float64{{3, 4}})

			Convey("Then it should return the softmax of the intercepts", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 1)
				So(out[0][0], ShouldAlmostEqual, 0.25, 1e-12)
				So(out[0][1], ShouldAlmostEqual, 0.5, 1e-12)
				So(out[0][2], ShouldAlmostEqual, 0.25, 1e-12)
			})
		})

		Convey("When a row has the wrong width", func() {
			out, err := p.PredictProba(context.Background(), [][]float64{{1, 2, 3}})

			Convey("Then it should report a shape mismatch", func() {
				So(out, ShouldBeNil)
				So(errors.Is(err, classifier.ErrShapeMismatch), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := p.PredictProba(ctx, [][]float64{{1, 2}})

			Convey("Then it should return the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a pipeline with large coefficients", t, func() {
		p := uniformPipeline()
		p.Coef = [][]float64{{1000, 0}, {0, 0}, {0, 0}}
		p.Intercept = []float64{0, 0, 0}

		Convey("Then softmax should stay finite and normalized", func() {
			out, err := p.PredictProba(context.Background(), [][]float64{{5, 0}})
			So(err, ShouldBeNil)
			So(out[0][0], ShouldAlmostEqual, 1.0, 1e-12)
			So(math.IsNaN(out[0][1]), ShouldBeFalse)
			So(sumOf(out[0]), ShouldAlmostEqual, 1.0, 1e-12)
		})
	})

	Convey("Given a zero scale entry", t, func() {
		p := uniformPipeline()
		p.Scaler.Scale = []float64{0, 1}
		p.Coef = [][]float64{{1, 0}, {0, 0}, {0, 0}}
		p.Intercept = []float64{0, 0, 0}

		Convey("Then that column should pass through unscaled", func() {
			out, err := p.PredictProba(context.Background(), [][]float64{{0, 0}})
			So(err, ShouldBeNil)
			So(out[0][0], ShouldAlmostEqual, 1.0/3, 1e-12)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given the artifact shipped with the service", t, func() {
		p, err := classifier.Load(shippedArtifact,
			classifier.WithColumns(features.CanonicalOrder()),
			classifier.WithClasses(classLabels),
		)

		Convey("Then it should load and match the feature contract", func() {
			So(err, ShouldBeNil)
			So(p.Path, ShouldEqual, shippedArtifact)
			So(p.Columns, ShouldResemble, features.CanonicalOrder())
			So(p.Classes, ShouldResemble, classLabels)
		})

		Convey("And it should produce a distribution for the form defaults", func() {
			out, err := p.PredictProba(context.Background(), [][]float64{features.Defaults().Vector()})
			So(err, ShouldBeNil)
			So(len(out[0]), ShouldEqual, 3)
			So(sumOf(out[0]), ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("And a strong student should lean towards Graduate", func() {
			strong := features.Record{
				FirstSemApproved: 6, FirstSemGrade: 14, FirstSemEnrolled: 6,
				SecondSemApproved: 6, SecondSemGrade: 14, SecondSemEnrolled: 6,
				AdmissionGrade: 150, TuitionUpToDate: true, ScholarshipHolder: true,
			}
			out, err := p.PredictProba(context.Background(), [][]float64{strong.Vector()})
			So(err, ShouldBeNil)
			So(out[0][2], ShouldBeGreaterThan, out[0][0])
			So(out[0][2], ShouldBeGreaterThan, out[0][1])
		})

		Convey("And a student with no approved units should lean towards Dropout", func() {
			weak := features.Record{
				FirstSemEnrolled: 6, SecondSemEnrolled: 6, AdmissionGrade: 110,
			}
			out, err := p.PredictProba(context.Background(), [][]float64{weak.Vector()})
			So(err, ShouldBeNil)
			So(out[0][0], ShouldBeGreaterThan, out[0][1])
			So(out[0][0], ShouldBeGreaterThan, out[0][2])
		})
	})

	Convey("Given artifacts that cannot be served", t, func() {
		dir := t.TempDir()
		write := func(name, content string) string {
			path := filepath.Join(dir, name)
			So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)
			return path
		}

		Convey("When the file does not exist", func() {
			_, err := classifier.Load(filepath.Join(dir, "absent.yaml"))

			Convey("Then it should be a startup load error wrapping the os error", func() {
				So(errors.Is(err, classifier.ErrStartupLoad), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
				var loadErr *classifier.LoadError
				So(errors.As(err, &loadErr), ShouldBeTrue)
				So(loadErr.Path, ShouldEndWith, "absent.yaml")
			})
		})

		Convey("When the file is empty", func() {
			_, err := classifier.Load(write("empty.yaml", "  \n"))
			So(errors.Is(err, classifier.ErrStartupLoad), ShouldBeTrue)
		})

		Convey("When the file is corrupt", func() {
			_, err := classifier.Load(write("corrupt.yaml", "columns: [a, b\n"))
			So(errors.Is(err, classifier.ErrStartupLoad), ShouldBeTrue)
		})

		Convey("When the file has unknown keys", func() {
			_, err := classifier.Load(write("unknown.yaml", "kind: tree\ncolumns: [a]\n"))
			So(errors.Is(err, classifier.ErrStartupLoad), ShouldBeTrue)
		})

		Convey("When dimensions disagree", func() {
			_, err := classifier.Load(write("dims.yaml", `
columns: [a, b]
classes: [x, y]
scaler: {mean: [0, 0], scale: [1, 1]}
coef: [[1, 2], [3]]
intercept: [0, 0]
`))
			So(errors.Is(err, classifier.ErrStartupLoad), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "coef row 1")
		})

		Convey("When the columns are in a different order", func() {
			_, err := classifier.Load(write("order.yaml", `
columns: [b, a]
classes: [x]
scaler: {mean: [0, 0], scale: [1, 1]}
coef: [[1, 2]]
intercept: [0]
`), classifier.WithColumns([]string{"a", "b"}))
			So(errors.Is(err, classifier.ErrStartupLoad), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "columns")
		})

		Convey("When the classes differ from the expected labels", func() {
			_, err := classifier.Load(write("classes.yaml", `
columns: [a]
classes: [Graduate, Dropout]
scaler: {mean: [0], scale: [1]}
coef: [[1], [2]]
intercept: [0, 0]
`), classifier.WithClasses(classLabels))
			So(errors.Is(err, classifier.ErrStartupLoad), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "classes")
		})

		Convey("When the artifact is written as JSON", func() {
			path := write("model.json", `{"name": "tiny", "columns": ["a"], "classes": ["x", "y"],
 "scaler": {"mean": [0], "scale": [1]}, "coef": [[0], [0]], "intercept": [0, 0]}`)
			p, err := classifier.Load(path)

			Convey("Then it should load as well", func() {
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "tiny")
				out, err := p.PredictProba(context.Background(), [][]float64{{1}})
				So(err, ShouldBeNil)
				So(out[0], ShouldResemble, []float64{0.5, 0.5})
			})
		})
	})
}

func TestFunc(t *testing.T) {
	Convey("Given a function adapter", t, func() {
		var got [][]float64
		clf := classifier.Func(func(_ context.Context, X [][]float64) ([][]float64, error) {
			got = X
			return [][]float64{{1}}, nil
		})

		Convey("Then it should satisfy Classifier and pass rows through", func() {
			var c classifier.Classifier = clf
			out, err := c.PredictProba(context.Background(), [][]float64{{7}})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, [][]float64{{1}})
			So(got, ShouldResemble, [][]float64{{7}})
		})
	})
}
