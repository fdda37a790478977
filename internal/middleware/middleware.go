package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/metrics"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Middleware runs trace injection, bearer auth and per IP rate limiting in
// front of every handler, and counts the response status.
type Middleware struct {
	authToken    string
	noAuthBypass bool
	limiter      *IPRateLimiter
}

func New(settings config.Settings) *Middleware {
	return &Middleware{
		authToken:    settings.AuthToken,
		noAuthBypass: settings.NoAuthBypass,
		limiter:      NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND, config.RateLimiterIdleTTL),
	}
}

// Wrap protects next with the full chain.
func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return m.wrap(next, true)
}

// WrapPublic skips authentication.
func (m *Middleware) WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return m.wrap(next, false)
}

// WrapHandler is Wrap for http.Handler values such as the MCP endpoint.
func (m *Middleware) WrapHandler(next http.Handler) http.Handler {
	return m.wrap(next.ServeHTTP, true)
}

func (m *Middleware) wrap(next http.HandlerFunc, requireAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(metricPath(r), strconv.Itoa(rec.Status)).Inc()
		}()

		re := m.processRequest(requestResponseStruct{req: r, writer: rec}, requireAuth)
		if !handleBadRequest(re) {
			return
		}
		next(rec, re.req)
	}
}

// metricPath labels by the matched chi route so ids in the url do not
// create a new series per request.
func metricPath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func (m *Middleware) processRequest(re requestResponseStruct, requireAuth bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	re.logger.Info("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = m.rateLimiter(re)
	if re.badRequest.isBadRequest || !requireAuth {
		return re
	}
	return m.authenticate(re)
}
