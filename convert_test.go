package main

import (
	"strings"
	"testing"
)

// convertAll runs the full pipeline with defaults (or the given config).
func convertAll(t *testing.T, sql string, cfg *ConvertConfig) []ConversionResult {
	t.Helper()
	results, err := convertMySQLToPostgres(sql, cfg)
	if err != nil {
		t.Fatalf("convertMySQLToPostgres(%q) error: %v", sql, err)
	}
	return results
}

// convertOne runs the full pipeline on a single statement and returns its SQL.
func convertOne(t *testing.T, sql string) string {
	t.Helper()
	results := convertAll(t, sql, nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].IsError() {
		t.Fatalf("conversion failed: %s", results[0].Err)
	}
	return results[0].SQL
}

func TestBatchResultPerStatement(t *testing.T) {
	input := `
		SELECT 1;
		INSERT IGNORE INTO t (a) VALUES (1);
		DELETE FROM t LIMIT 3;
	`
	results := convertAll(t, input, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.IsError() {
			t.Errorf("statement %d unexpectedly failed: %s", i, r.Err)
		}
	}
}

func TestBatchEmptyInput(t *testing.T) {
	if _, err := convertMySQLToPostgres("   \n\t", nil); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := convertMySQLToPostgres("-- just a comment\n", nil); err == nil {
		t.Fatal("expected error for comment-only input")
	}
}

func TestUnparseableStatementBecomesComment(t *testing.T) {
	out := convertOne(t, "CREATE SERVER fed FOREIGN DATA WRAPPER mysql OPTIONS (USER 'remote')")
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.HasPrefix(line, "--") {
			t.Errorf("advisory block leaked a non-comment line: %q", line)
		}
	}
	if !strings.Contains(out, "manual rewrite required") {
		t.Errorf("advisory block missing reason header:\n%s", out)
	}
	if !strings.Contains(out, "CREATE SERVER") {
		t.Errorf("advisory block should quote the original statement:\n%s", out)
	}
}

func TestUnparseableStatementAsError(t *testing.T) {
	cfg := defaultConvertConfig()
	cfg.OnParseError = onParseErrorError

	input := "SELECT 1; CREATE TABLE ???; SELECT 2"
	results := convertAll(t, input, &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].IsError() || results[2].IsError() {
		t.Error("sibling statements must not be affected by one failure")
	}
	if !results[1].IsError() {
		t.Fatal("expected error result for unparseable statement")
	}
	if !strings.Contains(results[1].Err, "parse") {
		t.Errorf("error should name the failure kind, got %q", results[1].Err)
	}
}

func TestFormatPlainOutput(t *testing.T) {
	results := []ConversionResult{
		{SQL: "SELECT 1;\n"},
		{Err: "boom"},
		{SQL: "SELECT 2;"},
	}
	got := formatPlainOutput(results)
	want := "SELECT 1;\n\n-- ERROR: boom\n\nSELECT 2;\n"
	if got != want {
		t.Errorf("formatPlainOutput() = %q, want %q", got, want)
	}
}

func TestFormatPlainOutputTrailingNewline(t *testing.T) {
	got := formatPlainOutput([]ConversionResult{{SQL: "SELECT 1;"}})
	if !strings.HasSuffix(got, ";\n") || strings.HasSuffix(got, "\n\n") {
		t.Errorf("output must end with exactly one newline, got %q", got)
	}
}

func TestCommentBlock(t *testing.T) {
	got := commentBlock("reason here", "LINE1\nLINE2;")
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "-- TODO: reason here" {
		t.Errorf("unexpected header %q", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, "-- ") {
			t.Errorf("line not commented: %q", line)
		}
	}
}

func TestPassthroughSelect(t *testing.T) {
	out := convertOne(t, "SELECT a, b FROM t WHERE a=1")
	if !strings.HasPrefix(out, "SELECT") {
		t.Errorf("pass-through SELECT should stay a SELECT:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ";") {
		t.Errorf("statement should be terminated:\n%s", out)
	}
}
