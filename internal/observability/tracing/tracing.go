// Package tracing tags log output with a per-scope trace id. The process
// root and every inbound API request get their own id, so log lines from
// concurrent staking operations can be told apart.
package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InjectTraceID returns a context whose zerolog logger carries a fresh
// trace id. Loggers pulled from the context downstream inherit it.
func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	logger := log.With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}
