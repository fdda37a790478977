package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/akolanti/DermaRAG/internal/adapter/utils"
	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/data/store"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/handlers"
	"github.com/akolanti/DermaRAG/internal/job"
	"github.com/akolanti/DermaRAG/internal/middleware"
	"github.com/akolanti/DermaRAG/internal/rag"
)

type stubRag struct{}

func (stubRag) Ask(ctx context.Context, req rag.AskRequest) (rag.AskResult, error) {
	return rag.AskResult{Answer: "stub answer"}, nil
}
func (stubRag) ProcessJob(ctx context.Context, j jobModel.Job) jobModel.Job { return j }
func (stubRag) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job { return j }
func (stubRag) Wait() {}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	jobs := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 1),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	})
	r := utils.NewRouter()
	registerRoutes(r.Router, Routes{
		Handlers:   handlers.New(jobs, stubRag{}, t.TempDir()),
		Middleware: middleware.New(config.Settings{AuthToken: "secret"}),
		MCP: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	})
	return r.Router
}

func TestRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		auth   bool
		want   int
	}{
		{"root is public", http.MethodGet, "/", "", false, http.StatusOK},
		{"ask needs auth", http.MethodPost, "/ask", `{"message":"q"}`, false, http.StatusUnauthorized},
		{"ask with auth", http.MethodPost, "/ask", `{"message":"q"}`, true, http.StatusOK},
		{"ask job", http.MethodPost, "/ask/jobs", `{"message":"q"}`, true, http.StatusAccepted},
		{"unknown job", http.MethodGet, "/status/nope", "", true, http.StatusNotFound},
		{"mcp mounted behind auth", http.MethodPost, "/mcp", "", true, http.StatusTeapot},
		{"mcp needs auth", http.MethodPost, "/mcp", "", false, http.StatusUnauthorized},
		{"metrics", http.MethodGet, "/metrics", "", false, http.StatusOK},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			// separate clients so the rate limiter stays out of the way
			req.RemoteAddr = "192.0.2." + string(rune('1'+i)) + ":5000"
			if tt.auth {
				req.Header.Set("Authorization", "Bearer secret")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestShutDownHandler(t *testing.T) {
	signals := make(chan os.Signal, 1)
	stop := make(chan bool)
	workerStop := make(chan bool)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		<-workerStop
		wg.Done()
	}()

	waited, closed := false, false
	go ShutDownHandler(ShutdownParams{
		GracefulShutdown: signals,
		StopExecution:    stop,
		WorkerStop:       workerStop,
		Group:            &wg,
		BackgroundWait:   func() { waited = true },
		CloseServices:    func() { closed = true },
	})
	signals <- syscall.SIGTERM

	select {
	case <-stop:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not finish")
	}
	if !waited || !closed {
		t.Errorf("waited=%v closed=%v", waited, closed)
	}
}
