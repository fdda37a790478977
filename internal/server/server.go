package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/DermaRAG/internal/adapter/utils"
	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/handlers"
	"github.com/akolanti/DermaRAG/internal/middleware"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type Routes struct {
	Handlers   *handlers.Handler
	Middleware *middleware.Middleware
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	// BackgroundWait blocks until in flight cache writes finish.
	BackgroundWait func()
	CloseServices  context.CancelFunc
}

func registerRoutes(r chi.Router, rt Routes) {
	h, m := rt.Handlers, rt.Middleware

	r.Get("/", m.WrapPublic(h.RootHandler))
	r.Post("/ask", m.Wrap(h.AskHandler))
	r.Post("/ask/jobs", m.Wrap(h.AskJobHandler))
	r.Get("/status/{id}", m.Wrap(h.GetStatusHandler))
	r.Post("/ingest", m.Wrap(h.PostIngestHandler))
	if rt.MCP != nil {
		r.Handle("/mcp", m.WrapHandler(rt.MCP))
	}
}

func CreateServer(listenAddr string, rt Routes) {
	r := utils.GetRouter()
	registerRoutes(r.Router, rt)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "err", err)
			}
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		if shutdownParams.BackgroundWait != nil {
			shutdownParams.BackgroundWait()
		}
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
		close(shutdownParams.StopExecution)
	case <-ctx.Done():
		_logger.Error("Force shut down")
		os.Exit(1)
	}
}
