package object

import (
	"io"
	"strings"
	"testing"
)

func TestSniffContentTypeKeepsProvided(t *testing.T) {
	ct, r, err := SniffContentType("application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("SniffContentType: %v", err)
	}
	if ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(r)
	if string(body) != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSniffContentTypeReplaysBytes(t *testing.T) {
	ct, r, err := SniffContentType("", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("SniffContentType: %v", err)
	}
	if !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}
	body, _ := io.ReadAll(r)
	if string(body) != "hello world" {
		t.Fatalf("sniffed bytes were not replayed, got %q", body)
	}
}
