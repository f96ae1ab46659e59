package middleware

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/akolanti/profile-rag/internal/adapter/utils"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/handlers"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

const traceHeader = "X-Trace-Id"

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

type Middleware struct {
	authToken string
	limiter   *IPRateLimiter
	logger    *logger_i.Logger
}

// New builds the request pipeline. An empty authToken turns bearer auth off.
func New(authToken string, limiter *IPRateLimiter) *Middleware {
	m := &Middleware{
		authToken: authToken,
		limiter:   limiter,
		logger:    logger_i.NewLogger("middleware"),
	}
	if authToken == "" {
		m.logger.Warn("API_AUTH_TOKEN is not set, protected routes are open")
	}
	return m
}

// Public traces and counts a request.
func (m *Middleware) Public(next http.Handler) http.Handler {
	return m.wrap(next, false)
}

// Protected also enforces the bearer token and the per-IP rate limit.
func (m *Middleware) Protected(next http.Handler) http.Handler {
	return m.wrap(next, true)
}

func (m *Middleware) wrap(next http.Handler, protected bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		defer func() { recordRequest(r, rec.Status) }()

		re := m.injectTrace(requestResponseStruct{req: r, writer: rec, logger: m.logger})
		rec.Header().Set(traceHeader, re.req.Header.Get(traceHeader))
		if protected {
			re = m.authenticate(re)
			if !re.badRequest.isBadRequest {
				re = m.rateLimit(re)
			}
		}
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}

		re.logger.Debug("Request received", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(rec, re.req)
	})
}

func (m *Middleware) injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	trace := req.Header.Get(traceHeader)
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	req.Header.Set(traceHeader, trace)
	re.req = req.WithContext(context.WithValue(req.Context(), config.TRACE_ID_KEY, trace))
	return re
}

func (m *Middleware) authenticate(re requestResponseStruct) requestResponseStruct {
	if m.authToken == "" {
		return re
	}
	if !IsValidBearerToken(re.req.Header.Get("Authorization"), m.authToken, re.logger) {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusUnauthorized,
			errorMessage: "unauthorized",
		}
	}
	return re
}

func IsValidBearerToken(authHeader string, token string, log *logger_i.Logger) bool {
	if authHeader == "" {
		log.Warn("Empty authorization header")
		return false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Warn("No Bearer header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(authHeader, "Bearer ")), []byte(token)) != 1 {
		log.Warn("Invalid authorization header")
		return false
	}
	return true
}

func (m *Middleware) rateLimit(re requestResponseStruct) requestResponseStruct {
	if m.limiter == nil {
		return re
	}
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}
	if !m.limiter.GetLimiter(ip).Allow() {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "rate limit exceeded",
		}
	}
	return re
}

func handleBadRequest(re requestResponseStruct) {
	re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
	handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.errorMessage)
}

// recordRequest labels by route pattern so path parameters do not explode
// the series count.
func recordRequest(r *http.Request, status int) {
	path := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		path = rc.RoutePattern()
	}
	metrics.HttpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
