package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey is the gin context key under which the per-request trace id is stored.
const TraceIDKey = "trace_id"

// GetTraceIdOfRequest returns the trace id attached to the request by the
// logger middleware, generating one if the middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Value(TraceIDKey).(string)
	if !ok || traceId == "" {
		return uuid.NewString()
	}
	return traceId
}
