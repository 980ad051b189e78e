package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	app "github.com/okian/edupredict/internal/app"
	"github.com/okian/edupredict/internal/config"
	"github.com/okian/edupredict/internal/domain/classifier"
	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/prediction"
	"github.com/okian/edupredict/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const shippedArtifact = "../models/student_logreg.yaml"

// roundTripBody is the fixed literal record as a form would post it.
const roundTripBody = `{
	"Curricular_units_1st_sem_approved": 5,
	"Curricular_units_1st_sem_grade": 10.0,
	"Curricular_units_2nd_sem_approved": 5,
	"Curricular_units_2nd_sem_grade": 10.0,
	"Tuition_fees_up_to_date": 1,
	"Scholarship_holder": 0,
	"Curricular_units_2nd_sem_enrolled": 6,
	"Curricular_units_1st_sem_enrolled": 6,
	"Admission_grade": 120.0,
	"Displaced": 0
}`

func startedService() *app.Service {
	svc := app.New(app.WithModelPath(shippedArtifact))
	convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
	return svc
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the application mux over the shipped artifact", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		ctx := context.Background()
		svc := startedService()
		defer svc.Stop()
		mux := newMux(ctx, config.New(), svc)

		convey.Convey("When posting the round-trip record", func() {
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(roundTripBody))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then a full result should come back", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

				var res prediction.Result
				convey.So(json.Unmarshal(w.Body.Bytes(), &res), convey.ShouldBeNil)
				convey.So(prediction.Labels(), convey.ShouldContain, res.Label)
				convey.So(len(res.Probabilities), convey.ShouldEqual, 3)
				convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When a field is missing", func() {
			body := strings.Replace(roundTripBody, `"Displaced": 0`, `"Other": 0`, 1)
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then the response should name it", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, features.Displaced)
			})
		})

		convey.Convey("When requesting every other route", func() {
			for _, path := range []string{"/", "/app.js", "/features", "/stats", "/healthz", "/dashboard", "/api-docs", "/openapi.yaml"} {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration pointing at a missing artifact", t, func() {
		_ = os.Setenv("EDUPREDICT_MODEL_PATH", "/does/not/exist.yaml")
		_ = os.Setenv("EDUPREDICT_ADDR", "127.0.0.1:0")
		defer func() {
			_ = os.Unsetenv("EDUPREDICT_MODEL_PATH")
			_ = os.Unsetenv("EDUPREDICT_ADDR")
		}()

		convey.Convey("When running the application", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := run(ctx)

			convey.Convey("Then it should fail before serving with a startup load error", func() {
				convey.So(errors.Is(err, classifier.ErrStartupLoad), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "/does/not/exist.yaml")
			})
		})
	})

	convey.Convey("Given an invalid configuration", t, func() {
		_ = os.Setenv("EDUPREDICT_LOG_FORMAT", "xml")
		defer func() { _ = os.Unsetenv("EDUPREDICT_LOG_FORMAT") }()

		convey.Convey("When running the application", func() {
			err := run(context.Background())

			convey.Convey("Then configuration loading should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a valid configuration and a cancelled context", t, func() {
		_ = os.Setenv("EDUPREDICT_MODEL_PATH", shippedArtifact)
		_ = os.Setenv("EDUPREDICT_ADDR", "127.0.0.1:0")
		defer func() {
			_ = os.Unsetenv("EDUPREDICT_MODEL_PATH")
			_ = os.Unsetenv("EDUPREDICT_ADDR")
		}()

		convey.Convey("When running the application", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := run(ctx)

			convey.Convey("Then it should shut down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the loop should stop with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("metrics updater did not stop")
			}
		})
	})
}

func TestDescribeRoutes(t *testing.T) {
	convey.Convey("Given the route summary", t, func() {
		convey.So(describeRoutes(), convey.ShouldContainSubstring, "POST /predict")
	})
}
