package main

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
)

const unsupportedAdvisory = "Unsupported MySQL-specific syntax; manual rewrite required"

// convertMySQLToPostgres converts a batch of MySQL SQL text into one
// ConversionResult per statement, order-preserving. Statements are split and
// parsed individually so a malformed statement surfaces as its own advisory
// or error result instead of failing the batch; the error return fires only
// when the input contains no statements at all.
func convertMySQLToPostgres(sqlText string, cfg *ConvertConfig) ([]ConversionResult, error) {
	if cfg == nil {
		c := defaultConvertConfig()
		cfg = &c
	}

	sqlText = stripBOM(sqlText)
	if cfg.StripDefiner {
		sqlText = stripDefiner(sqlText)
	}

	fragments := splitStatements(sqlText)
	if len(fragments) == 0 {
		return nil, fmt.Errorf("no SQL statements found in input")
	}

	p := parser.New()
	results := make([]ConversionResult, 0, len(fragments))
	for _, raw := range fragments {
		results = append(results, convertStatement(p, raw, cfg))
	}
	return results, nil
}

// convertStatement converts one statement fragment. Failures stay local:
// returned errors and recovered panics become this statement's error result
// and never abort the batch.
func convertStatement(p *parser.Parser, raw string, cfg *ConvertConfig) (res ConversionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = ConversionResult{Err: fmt.Sprintf("panic: %v", r)}
		}
	}()

	node, err := p.ParseOneStmt(raw, "", "")
	if err != nil {
		if cfg.OnParseError == onParseErrorError {
			return ConversionResult{Err: fmt.Sprintf("parse: %v", err)}
		}
		return ConversionResult{SQL: commentBlock(unsupportedAdvisory, raw+";")}
	}

	sql, err := dispatch(node, raw, cfg)
	if err != nil {
		return ConversionResult{Err: err.Error()}
	}
	return ConversionResult{SQL: sql}
}

// dispatch picks the single applicable rewrite path for a parsed statement.
// Order matters: the predicates are not mutually exclusive in general.
func dispatch(node ast.StmtNode, raw string, cfg *ConvertConfig) (string, error) {
	switch stmt := node.(type) {
	case *ast.CreateTableStmt:
		return convertCreateTable(stmt, cfg)
	case *ast.DeleteStmt:
		if stmt.Limit != nil && !stmt.IsMultiTable {
			return convertLimitedDelete(stmt)
		}
	case *ast.UpdateStmt:
		if hasJoins(stmt.TableRefs) {
			return convertJoinUpdate(stmt)
		}
	case *ast.InsertStmt:
		if stmt.IgnoreErr && !stmt.IsReplace && len(stmt.OnDuplicate) == 0 {
			return convertInsertIgnore(stmt)
		}
	}
	return convertPassthrough(node, raw, cfg)
}

// commentBlock renders output that must not run: a reason header followed by
// the original statement with every line commented. The output stream never
// carries raw unexecuted MySQL disguised as a runnable statement.
func commentBlock(reason, original string) string {
	lines := []string{"-- TODO: " + reason}
	for _, line := range strings.Split(strings.TrimSpace(original), "\n") {
		lines = append(lines, "-- "+line)
	}
	return strings.Join(lines, "\n")
}

// formatPlainOutput renders the batch as one paragraph per result: converted
// SQL as-is, errors as a single comment line. Paragraphs are joined by a
// blank line with exactly one trailing newline.
func formatPlainOutput(results []ConversionResult) string {
	paragraphs := make([]string, 0, len(results))
	for _, r := range results {
		if r.IsError() {
			paragraphs = append(paragraphs, "-- ERROR: "+r.Err)
			continue
		}
		paragraphs = append(paragraphs, strings.TrimSpace(r.SQL))
	}
	return strings.TrimRight(strings.Join(paragraphs, "\n\n"), " \t\n") + "\n"
}
