package v1

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/pkg/auth"
	"github.com/emr-platform/emr-api/pkg/metrics"
)

const actorKey = "actor_user_id"

// ActorMiddleware resolves the acting user for the request. The primary
// channel is the X-User-ID header; a Bearer token is accepted as a fallback
// so token-carrying clients do not have to send both. Absence is not an
// error here: routes that need an actor reject at the service layer.
func ActorMiddleware(jwt *auth.JWTManager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				c.Set(actorKey, id)
				c.Next()
				return
			}
			// Unparseable header: fall through to the token.
			log.Debug("unparseable X-User-ID header", zap.String("value", raw))
		}

		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			if claims, err := jwt.ValidateAccessToken(token); err == nil {
				c.Set(actorKey, claims.UserID)
			} else {
				log.Debug("rejected bearer token", zap.Error(err))
			}
		}
		c.Next()
	}
}

// actorID returns the resolved acting user id, zero when the request
// carried no usable identity.
func actorID(c *gin.Context) int64 {
	if v, ok := c.Get(actorKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

func LoggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func MetricsMiddleware(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.InFlightGauge.Inc()
		c.Next()
		m.InFlightGauge.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
