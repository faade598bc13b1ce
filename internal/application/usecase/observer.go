package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aman3729/credit-score/internal/domain/model"
)

var tracer = otel.Tracer("github.com/aman3729/credit-score/internal/application/usecase")

// DecisionObserver receives decision outcomes. observability.Metrics
// satisfies it.
type DecisionObserver interface {
	DecisionRecorded(decision, loanType string, manual bool)
	ConcurrencyConflict()
	ObserveDuration(operation string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) DecisionRecorded(string, string, bool) {}
func (noopObserver) ConcurrencyConflict()                  {}
func (noopObserver) ObserveDuration(string, time.Duration) {}

func observerOrNoop(o DecisionObserver) DecisionObserver {
	if o == nil {
		return noopObserver{}
	}
	return o
}

func startSpan(ctx context.Context, name, borrowerID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("borrower.id", borrowerID)))
}

// endSpan records err on the span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordDecision(o DecisionObserver, d model.LendingDecision) {
	o.DecisionRecorded(d.Decision().String(), d.LoanType().String(), d.IsManual())
}

func authorize(allowed bool, action string) error {
	if !allowed {
		return fmt.Errorf("%s: %w", action, model.ErrPermissionDenied)
	}
	return nil
}
