package httpapi

import (
	"context"
	"testing"
)

func TestStartSpan_WithoutParentStaysSpanless(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.GetPlayerLink")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Fatalf("expected no span without a parent server span")
	}
	if got != ctx {
		t.Fatalf("expected context to be returned unchanged")
	}
}
