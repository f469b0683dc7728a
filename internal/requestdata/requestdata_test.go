package requestdata

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestCallerContext(t *testing.T) {
	ctx := context.Background()
	if GetCaller(ctx) != nil {
		t.Fatalf("expected no caller on a bare context")
	}
	c := &Caller{UserID: uuid.New(), SessionID: uuid.New(), IPAddress: "127.0.0.1"}
	got := GetCaller(WithCaller(ctx, c))
	if got != c {
		t.Fatalf("GetCaller: got %+v", got)
	}
}

func TestCallerAuthenticated(t *testing.T) {
	var nilCaller *Caller
	if nilCaller.Authenticated() {
		t.Fatalf("nil caller must not be authenticated")
	}
	if (&Caller{}).Authenticated() {
		t.Fatalf("caller without user id must not be authenticated")
	}
	if !(&Caller{UserID: uuid.New()}).Authenticated() {
		t.Fatalf("caller with user id must be authenticated")
	}
}
