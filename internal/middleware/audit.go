package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/travel-console/internal/service/audit"
)

type AuditMiddleware struct {
	recorder audit.Recorder
}

func NewAuditMiddleware(recorder audit.Recorder) *AuditMiddleware {
	return &AuditMiddleware{recorder: recorder}
}

// AuditLog records action on entityType once the handler succeeded. The :id
// route parameter wins over entityID when present.
func (m *AuditMiddleware) AuditLog(action, entityType, entityID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status >= 400 || m.recorder == nil {
			return
		}
		op, ok := OperatorFrom(c)
		if !ok {
			return
		}

		id := entityID
		if p := c.Param("id"); p != "" {
			id = p
		}

		m.recorder.Record(c.Request.Context(), op.ID, action, entityType, id, &audit.LogOptions{
			Metadata: map[string]interface{}{
				"path":   c.Request.URL.Path,
				"query":  c.Request.URL.RawQuery,
				"method": c.Request.Method,
				"status": status,
			},
		})
	}
}
