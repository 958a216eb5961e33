package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintAcceptsMarkedStatements(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "ok.go", "package q\n\nconst QOne = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n\nconst Label = \"not sql\"\n")

	vs, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint error: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %+v", vs)
	}
}

func TestLintReportsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "bad.go", "package q\n\nconst QBad = `\nupdate t set a = 1;\n`\n")

	vs, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint error: %v", err)
	}
	if len(vs) != 1 || vs[0].name != "QBad" || !strings.Contains(vs[0].message, "missing") {
		t.Fatalf("violations = %+v", vs)
	}
}

func TestLintReportsDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	marker := "--sql 11111111-2222-4333-8444-555555555555"
	writeGo(t, dir, "a.go", "package q\n\nconst QA = `"+marker+"\nselect 1;\n`\n")
	writeGo(t, dir, "b.go", "package q\n\nconst QB = `"+marker+"\nselect 2;\n`\n")

	vs, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint error: %v", err)
	}
	if len(vs) != 1 {
		t.Fatalf("violations = %+v, want one duplicate", vs)
	}
	if vs[0].name != "QB" || !strings.Contains(vs[0].message, "first used by QA") {
		t.Fatalf("duplicate violation = %+v", vs[0])
	}
}

func TestLintRepositoryStatements(t *testing.T) {
	vs, err := lint([]string{filepath.Join("..", "..", "sqlinline")})
	if err != nil {
		t.Fatalf("lint error: %v", err)
	}
	for _, v := range vs {
		t.Errorf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
	}
}

func TestLintIgnoresProse(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "prose.go", "package q\n\nvar Hint = \"Start with a hook and update the caption\"\n")

	vs, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint error: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %+v", vs)
	}
}
