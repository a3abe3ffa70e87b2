package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"
	headerUserRole  = "X-User-Role"

	ctxRequestID = "request_id"
	ctxCaller    = "caller"
)

// requestIDMiddleware propagates the gateway request ID or assigns a new one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// identityMiddleware reads the caller asserted by the upstream gateway.
// A nil verifier accepts the headers unsigned.
func identityMiddleware(verifier *IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerUserID))
		role := entity.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(headerUserRole))))

		if id == "" || !role.IsValid() {
			respondFailure(c, http.StatusUnauthorized, codeUnauthenticated, "missing or invalid caller identity")
			return
		}
		if verifier != nil {
			err := verifier.Verify(id, role, c.GetHeader(headerIdentityTimestamp), c.GetHeader(headerIdentitySignature))
			if err != nil {
				respondFailure(c, http.StatusUnauthorized, codeUnauthenticated, err.Error())
				return
			}
		}

		c.Set(ctxCaller, entity.Caller{ID: id, Role: role})
		c.Next()
	}
}

func callerFrom(c *gin.Context) entity.Caller {
	caller, _ := c.MustGet(ctxCaller).(entity.Caller)
	return caller
}

// loggingMiddleware writes one access log line per request
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		keysAndValues := []interface{}{
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", requestIDFrom(c),
		}
		if caller, ok := c.Get(ctxCaller); ok {
			keysAndValues = append(keysAndValues, "caller", caller.(entity.Caller).ID)
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("HTTP request", keysAndValues...)
			return
		}
		s.logger.Info("HTTP request", keysAndValues...)
	}
}
