package telemetry

import (
	"context"
	"log"

	"messaging-service/internal/observability"
)

// Reporter receives exceptions from the messaging core. Implementations are
// fire-and-forget and must never panic or return an error to the caller.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// AuditReporter logs the error, counts it, and emits an ERROR audit event.
type AuditReporter struct {
	emitter *AuditEmitter
}

// NewAuditReporter constructs AuditReporter. A nil emitter degrades to
// log-and-count only.
func NewAuditReporter(emitter *AuditEmitter) *AuditReporter {
	return &AuditReporter{emitter: emitter}
}

func (r *AuditReporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	log.Printf("reported error: %v", err)
	observability.IncReportedError()
	r.emitter.Emit(ctx, "ERROR", err.Error(), "", nil)
}
