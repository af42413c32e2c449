package http

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"taskdeck/internal/auth"
)

const userIDKey = "taskdeck.user_id"

// requireToken builds the session gate: it extracts the bearer token from the
// Authorization header, validates it for the expected kind and binds the
// resolved user id to the request context. Anything short of a valid token of
// the right kind aborts the request with 401 before the handler runs.
func requireToken(issuer *auth.Issuer, kind auth.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		userID, err := issuer.Parse(tokenString, kind)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger attaches a request id and logs one line per request.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}).Info("request")
	}
}

const (
	// idle clients are dropped from the limiter pool after this long
	limiterIdleTTL = 3 * time.Minute
	// eviction runs when the pool grows past this many clients
	limiterSweepThreshold = 1024
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client IP. The pool is bounded:
// once it outgrows the sweep threshold, entries idle for longer than the TTL
// are evicted before a new client is admitted.
type limiterPool struct {
	mu        sync.Mutex
	perSecond float64
	burst     int
	clients   map[string]*clientLimiter
}

func newLimiterPool(perSecond float64, burst int) *limiterPool {
	return &limiterPool{
		perSecond: perSecond,
		burst:     burst,
		clients:   make(map[string]*clientLimiter),
	}
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	cl, ok := p.clients[ip]
	if !ok {
		if len(p.clients) >= limiterSweepThreshold {
			p.evictIdle(now.Add(-limiterIdleTTL))
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(p.perSecond), p.burst)}
		p.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// evictIdle drops clients not seen since the cutoff. Callers hold p.mu.
func (p *limiterPool) evictIdle(cutoff time.Time) {
	for ip, cl := range p.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(p.clients, ip)
		}
	}
}

// rateLimit applies a per-client token bucket keyed by client IP. A
// non-positive rate disables limiting entirely.
func rateLimit(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	pool := newLimiterPool(perSecond, burst)
	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskdeck_http_requests_total",
		Help: "HTTP requests processed, labelled by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskdeck_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
