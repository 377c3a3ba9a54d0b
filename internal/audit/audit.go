package audit

import (
	"context"

	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
)

// Log writes a structured audit event. In the future this can be wired to DB
// or an external sink; for now it rides the structured logger.
func Log(ctx context.Context, event string, fields map[string]any) {
	l := logger.From(ctx).Named("audit")
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	l.Sugar().Infow(event, args...)
}
