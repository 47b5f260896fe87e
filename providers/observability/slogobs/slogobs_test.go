package slogobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/reagentlabs/reagent/providers/observability"
)

func newTestObserver() (*Observer, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger), &buf
}

// TestStartSpan_AttachesSpanToContext verifies that the returned context
// carries the span for nested components.
func TestStartSpan_AttachesSpanToContext(t *testing.T) {
	observer, _ := newTestObserver()

	ctx, span := observer.StartSpan(context.Background(), "agent.run")
	if span == nil {
		t.Fatal("expected a span")
	}
	if observability.SpanFromContext(ctx) != span {
		t.Error("span not attached to returned context")
	}
	span.End()
}

// TestSpan_EndLogsDuration verifies span end entries include the span name
// and duration.
func TestSpan_EndLogsDuration(t *testing.T) {
	observer, buf := newTestObserver()

	_, span := observer.StartSpan(context.Background(), "tool.call",
		observability.String(observability.AttrToolName, "Calculator"))
	span.End()

	out := buf.String()
	if !strings.Contains(out, "span.end") || !strings.Contains(out, "tool.call") {
		t.Errorf("missing span end entry: %s", out)
	}
	if !strings.Contains(out, "Calculator") {
		t.Errorf("span attributes not logged: %s", out)
	}
}

// TestSpan_RecordError verifies errors are logged at error level.
func TestSpan_RecordError(t *testing.T) {
	observer, buf := newTestObserver()

	_, span := observer.StartSpan(context.Background(), "llm.send")
	span.RecordError(errors.New("boom"))

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected recorded error in log output: %s", buf.String())
	}
}

// TestLogger_Levels verifies the Logger half of the provider routes to slog.
func TestLogger_Levels(t *testing.T) {
	observer, buf := newTestObserver()

	observer.Info(context.Background(), "iteration complete",
		observability.Int(observability.AttrAgentIteration, 2))

	out := buf.String()
	if !strings.Contains(out, "iteration complete") || !strings.Contains(out, "agent.iteration=2") {
		t.Errorf("unexpected log output: %s", out)
	}
}
