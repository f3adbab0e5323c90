package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPromptCommandRendersInputs(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "Backend engineer using Node.js and SQL")
	jd := writeFile(t, dir, "jd.txt", "Seeking Node.js, SQL and Docker")

	out, err := runCmd(t, "prompt", "--resume", resume, "--jd", jd)
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if !strings.Contains(out, "Backend engineer using Node.js and SQL") || !strings.Contains(out, "Seeking Node.js, SQL and Docker") {
		t.Fatalf("prompt missing inputs: %s", out)
	}
}

func TestPromptCommandRejectsUnknownTone(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "r")
	jd := writeFile(t, dir, "jd.txt", "j")

	if _, err := runCmd(t, "prompt", "--resume", resume, "--jd", jd, "--tone", "Pirate"); err == nil {
		t.Fatal("expected unsupported tone error")
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := runCmd(t, "schema")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if !strings.Contains(out, "matchScore") {
		t.Fatalf("unexpected schema output: %s", out)
	}

	out, err = runCmd(t, "schema", "--cover-letter")
	if err != nil {
		t.Fatalf("schema --cover-letter: %v", err)
	}
	if !strings.Contains(out, "coverLetter") || strings.Contains(out, "matchScore") {
		t.Fatalf("unexpected cover letter schema: %s", out)
	}
}

func TestExtractCommandRejectsUnsupportedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "resume.rtf", "{\\rtf1}")
	if _, err := runCmd(t, "extract", path); err == nil {
		t.Fatal("expected unsupported file type error")
	}
}
