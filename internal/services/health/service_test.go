package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusWithoutDatabase(t *testing.T) {
	got := NewService(nil, "", "placeholder").Status(context.Background())
	if !got.OK || got.Database != "memory" || got.Storage != "none" || got.LLM != "placeholder" {
		t.Fatalf("unexpected status %#v", got)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	svc := NewService(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected ping deadline")
		}
		return nil
	}, "s3", "openai")
	if got := svc.Status(context.Background()); !got.OK || got.Database != "ok" {
		t.Fatalf("unexpected status %#v", got)
	}
}

func TestStatusReportsUnreachableDatabase(t *testing.T) {
	svc := NewService(func(context.Context) error { return errors.New("dial tcp: refused") }, "local", "gemini")
	got := svc.Status(context.Background())
	if got.OK || got.Database != "unreachable" {
		t.Fatalf("unexpected status %#v", got)
	}
}
