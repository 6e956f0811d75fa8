package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/spfc-calendar/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with an ID, reusing the caller's when sent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one structured line per request.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logger.Fields{
			"request_id": c.GetString("request_id"),
			"client_ip":  clientIP(c.Request),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"user_agent": c.Request.UserAgent(),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields["error"] = msg
		}

		logger.Info("HTTP request", fields)
		logger.IncrCounter("http.requests")
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Header("X-Powered-By", "SPFC-API")

		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
			c.Header("Pragma", "no-cache")
		}

		c.Next()
	}
}

// trustedHosts rejects requests whose Host is not listed. An empty list or
// "*" accepts any host; "*.example.com" matches subdomains.
func trustedHosts(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(allowed) == 0 || contains(allowed, "*") {
			c.Next()
			return
		}

		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		for _, pattern := range allowed {
			if strings.EqualFold(pattern, host) {
				c.Next()
				return
			}
			if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(strings.ToLower(host), strings.ToLower(pattern[1:])) {
				c.Next()
				return
			}
		}

		logger.Warn("Rejected request with untrusted host", logger.Fields{"host": c.Request.Host})
		abortWithError(c, http.StatusBadRequest, "Host inválido", "")
	}
}

func cors(origins []string) gin.HandlerFunc {
	allowAny := len(origins) == 0 || contains(origins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAny:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && contains(origins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, http.StatusInternalServerError, "API_KEY não configurada no servidor", "")
			return
		}

		providedKey := c.GetHeader("X-API-Key")
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.Header("WWW-Authenticate", "Bearer")
			abortWithError(c, http.StatusUnauthorized, "API key obrigatória", "Envie Authorization: Bearer <key> ou X-API-Key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
			abortWithError(c, http.StatusUnauthorized, "API Key inválida", "")
			return
		}

		c.Next()
	}
}

// rateLimiter keeps one token bucket per client IP. Each bucket holds limit
// tokens and refills completely over window.
type rateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// defaultRateWindow replaces a non-positive window.
const defaultRateWindow = time.Minute

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if window <= 0 {
		logger.Warn("Invalid rate limit window, using default", logger.Fields{
			"window":  window.String(),
			"default": defaultRateWindow.String(),
		})
		window = defaultRateWindow
	}
	return &rateLimiter{
		limit:     limit,
		window:    window,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

// allow consumes a token for ip and reports the tokens left.
func (rl *rateLimiter) allow(ip string, now time.Time) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) > rl.window {
		for key, cl := range rl.clients {
			if now.Sub(cl.lastSeen) > rl.window {
				delete(rl.clients, key)
			}
		}
		rl.lastSweep = now
	}

	cl, ok := rl.clients[ip]
	if !ok {
		every := rl.window / time.Duration(rl.limit)
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(every), rl.limit)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = now

	allowed := cl.limiter.AllowN(now, 1)
	remaining := int(cl.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	window := strconv.Itoa(int(rl.window.Seconds()))
	limit := strconv.Itoa(rl.limit)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		ip := clientIP(c.Request)
		allowed, remaining := rl.allow(ip, time.Now())

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Window", window)

		if !allowed {
			logger.Warn("Rate limit exceeded", logger.Fields{"client_ip": ip})
			logger.IncrCounter("http.rate_limited")
			c.Header("Retry-After", window)
			abortWithError(c, http.StatusTooManyRequests, "Rate limit excedido",
				limit+" requisições por "+window+" segundos")
			return
		}

		c.Next()
	}
}

// clientIP resolves the caller's address behind Cloudflare or a reverse proxy.
func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func abortWithError(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
