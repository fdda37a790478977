package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/akolanti/DermaRAG/internal/adapter/utils"
	"github.com/akolanti/DermaRAG/internal/handlers"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
)

const traceHeader = "X-Trace-Id"

func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	trace := req.Header.Get(traceHeader)
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	req.Header.Set(traceHeader, trace)
	re.writer.Header().Set(traceHeader, trace)
	re.req = req.WithContext(logger_i.WithTraceID(req.Context(), trace))
	return re
}

func (m *Middleware) authenticate(re requestResponseStruct) requestResponseStruct {
	if !m.IsValidBearerToken(re.req.Header.Get("Authorization"), re.logger) {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusUnauthorized,
			errorMessage: "Unauthorized",
		}
		return re
	}
	re.logger.Debug("Authorized")
	return re
}

func (m *Middleware) IsValidBearerToken(authHeader string, log *logger_i.Logger) bool {
	if m.noAuthBypass {
		log.Warn("Auth bypass is enabled")
		return true
	}
	if m.authToken == "" {
		log.Error("No auth token configured, rejecting request")
		return false
	}
	if authHeader == "" {
		log.Warn("Empty authorization header")
		return false
	}
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		log.Warn("No Bearer header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(m.authToken)) != 1 {
		log.Warn("Invalid authorization header")
		return false
	}
	return true
}

func (m *Middleware) rateLimiter(re requestResponseStruct) requestResponseStruct {
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !m.limiter.GetLimiter(ip).Allow() {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded",
		}
	}
	return re
}

// handleBadRequest writes the rejection and reports whether the request may
// continue.
func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		re.logger.Warn("Rejected request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
		handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, "", re.badRequest.errorMessage)
		return false
	}
	return true
}
