package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/compliance/internal/domain/scoring"
	"github.com/okian/compliance/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	projectID   = uuid.MustParse("7d3c1f0e-4b2a-4c55-9a61-0f6b1e2d3c4a")
	executionID = uuid.MustParse("1a2b3c4d-5e6f-4a1b-8c2d-3e4f5a6b7c8d")
	missingID   = uuid.MustParse("00000000-0000-4000-8000-000000000000")
)

// fakeAPI serves canned responses and records the last query string.
type fakeAPI struct {
	lastPath  string
	lastQuery string
}

func (f *fakeAPI) handler() http.Handler {
	score := 91.5
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	record := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.lastPath, f.lastQuery = r.URL.Path, r.URL.RawQuery
			next(w, r)
		}
	}

	mux.HandleFunc("GET /api/health", record(func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, types.HealthResponse{Status: "ok", Service: "coder-compliance-api"})
	}))
	mux.HandleFunc("GET /api/projects", record(func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, []types.ProjectResponse{
			{ID: projectID, Name: "Conduit", Stack: "node-express", LastScore: &score, LastExecutionAt: &at, Classification: scoring.ClassifyPtr(&score)},
			{ID: uuid.New(), Name: "EduConnect", Stack: "react-django"},
		})
	}))
	mux.HandleFunc("GET /api/projects/{id}", record(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == missingID.String() {
			write(w, http.StatusNotFound, types.ErrorResponse{Detail: "Projeto não encontrado"})
			return
		}
		write(w, http.StatusOK, types.ProjectResponse{ID: projectID, Name: "Conduit", LastScore: &score})
	}))
	mux.HandleFunc("GET /api/projects/{id}/history", record(func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, []types.ScoreHistoryResponse{{ExecutionID: executionID, RunnerType: "security", Score: 37.5, Total: 8, Passed: 3, RecordedAt: &at}})
	}))
	mux.HandleFunc("GET /api/projects/{id}/trend", record(func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, types.TrendResponse{ProjectID: projectID, Runners: []types.RunnerTrend{
			{RunnerType: "api", Samples: 2, Trend: scoring.ComputeTrend(80, 90)},
		}})
	}))
	mux.HandleFunc("GET /api/executions", record(func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, []types.ExecutionResponse{{ID: executionID, ProjectID: projectID, ProjectName: "Conduit", Environment: "local", StartedAt: at, Score: 72, Total: 18, Passed: 13, Failed: 5, DurationMS: 1530}})
	}))
	mux.HandleFunc("GET /api/executions/{id}", record(func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, types.ExecutionResponse{ID: executionID, ProjectName: "Conduit", StartedAt: at, Score: 45})
	}))
	mux.HandleFunc("GET /api/executions/{id}/results", record(func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, []types.TestResultResponse{{Name: "CSRF - formulario de edicao", Type: "security", Status: "fail", Severity: "high", Group: "csrf", Detail: "ghp_****************"}})
	}))
	return mux
}

func runCmd(server string, args ...string) (string, error) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--server", server}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClient(t *testing.T) {
	Convey("Given a client against the fake API", t, func() {
		api := &fakeAPI{}
		srv := httptest.NewServer(api.handler())
		defer srv.Close()
		c := NewClient(srv.URL + "/")
		ctx := context.Background()

		Convey("Then typed responses are decoded", func() {
			projects, err := c.Projects(ctx)
			So(err, ShouldBeNil)
			So(len(projects), ShouldEqual, 2)
			So(*projects[0].LastScore, ShouldEqual, 91.5)
			So(projects[1].LastScore, ShouldBeNil)
		})

		Convey("Then limits and filters become query parameters", func() {
			_, err := c.Executions(ctx, &projectID, 5)
			So(err, ShouldBeNil)
			So(api.lastPath, ShouldEqual, "/api/executions")
			So(api.lastQuery, ShouldContainSubstring, "limit=5")
			So(api.lastQuery, ShouldContainSubstring, "project_id="+projectID.String())

			_, err = c.ProjectHistory(ctx, projectID, 0)
			So(err, ShouldBeNil)
			So(api.lastQuery, ShouldBeEmpty)
		})

		Convey("Then error bodies become APIError", func() {
			_, err := c.Project(ctx, missingID)
			So(errors.Is(err, ErrAPI), ShouldBeTrue)
			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Status, ShouldEqual, http.StatusNotFound)
			So(apiErr.Detail, ShouldEqual, "Projeto não encontrado")
		})

		Convey("Then plain text errors are kept verbatim", func() {
			err := NewClient(srv.URL).get(ctx, "/nowhere", nil, &struct{}{})
			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Status, ShouldEqual, http.StatusNotFound)
			So(apiErr.Detail, ShouldContainSubstring, "404 page not found")
		})
	})
}

func TestCommands(t *testing.T) {
	Convey("Given compliancectl pointed at the fake API", t, func() {
		api := &fakeAPI{}
		srv := httptest.NewServer(api.handler())
		defer srv.Close()

		Convey("When checking health", func() {
			out, err := runCmd(srv.URL, "health")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Status: ok")
		})

		Convey("When listing projects", func() {
			out, err := runCmd(srv.URL, "projects", "list")

			Convey("Then scores carry their classification and unscored projects a dash", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "LAST SCORE")
				So(out, ShouldContainSubstring, "91.5")
				So(out, ShouldContainSubstring, scoring.LabelExcellent)
				So(out, ShouldContainSubstring, "EduConnect")
			})
		})

		Convey("When listing projects as JSON", func() {
			out, err := runCmd(srv.URL, "--json", "projects", "list")

			Convey("Then the dashboard keys are printed", func() {
				So(err, ShouldBeNil)
				var decoded []map[string]any
				So(json.Unmarshal([]byte(out), &decoded), ShouldBeNil)
				So(decoded[0]["nome"], ShouldEqual, "Conduit")
			})
		})

		Convey("When showing history with a limit", func() {
			out, err := runCmd(srv.URL, "projects", "history", projectID.String(), "--limit", "10")
			So(err, ShouldBeNil)
			So(api.lastQuery, ShouldEqual, "limit=10")
			So(out, ShouldContainSubstring, "3/8")
			So(out, ShouldContainSubstring, scoring.LabelCritical)
		})

		Convey("When showing the trend", func() {
			out, err := runCmd(srv.URL, "projects", "trend", projectID.String())
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "+10.00")
			So(out, ShouldContainSubstring, string(scoring.Up))
		})

		Convey("When listing executions of a project", func() {
			out, err := runCmd(srv.URL, "executions", "list", "--project", projectID.String(), "-l", "3")
			So(err, ShouldBeNil)
			So(api.lastQuery, ShouldContainSubstring, "project_id="+projectID.String())
			So(out, ShouldContainSubstring, "13/18")
			So(out, ShouldContainSubstring, scoring.LabelAttention)
			So(out, ShouldContainSubstring, "1.53s")
		})

		Convey("When showing an execution and its results", func() {
			out, err := runCmd(srv.URL, "executions", "get", executionID.String())
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, scoring.LabelCritical)

			out, err = runCmd(srv.URL, "executions", "results", executionID.String())
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "ghp_****")
			So(out, ShouldContainSubstring, "csrf")
		})

		Convey("When the id is not a UUID", func() {
			_, err := runCmd(srv.URL, "projects", "get", "conduit")

			Convey("Then nothing is requested", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "must be a UUID")
				So(api.lastPath, ShouldBeEmpty)
			})
		})

		Convey("When the project does not exist", func() {
			_, err := runCmd(srv.URL, "projects", "get", missingID.String())
			So(errors.Is(err, ErrAPI), ShouldBeTrue)
		})
	})
}
