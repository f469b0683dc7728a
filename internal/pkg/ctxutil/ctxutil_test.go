package ctxutil

import (
	"context"
	"testing"
)

func TestTraceDataRoundTrip(t *testing.T) {
	if got := GetTraceData(context.Background()); got != nil {
		t.Fatalf("expected no trace data, got %+v", got)
	}
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t-1", RequestID: "r-1"})
	if got := GetTraceData(ctx); got == nil || got.TraceID != "t-1" {
		t.Fatalf("GetTraceData: got %+v", got)
	}
	if got := RequestID(ctx); got != "r-1" {
		t.Fatalf("RequestID: got %q", got)
	}
}
