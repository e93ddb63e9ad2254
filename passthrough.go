package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"
)

const upsertAdvisory = "Cannot reliably convert without knowing conflict target/constraints; consider ON CONFLICT"

// convertPassthrough handles every statement no dedicated rewriter claims:
// print via the generic printer, then post-process. Upsert-shaped statements
// are demoted to an advisory block because a correct ON CONFLICT rewrite
// needs the table's unique constraints, which only the schema knows.
func convertPassthrough(stmt ast.StmtNode, raw string, cfg *ConvertConfig) (string, error) {
	if reason, demote := upsertShaped(stmt, raw); demote {
		return commentBlock(reason, raw+";"), nil
	}

	sql, err := restorePG(stmt)
	if err != nil {
		return "", err
	}
	if strings.Contains(strings.ToUpper(raw), "UNIX_TIMESTAMP") {
		sql, err = rewriteUnixTimestamp(stmt, sql)
		if err != nil {
			return "", err
		}
	}
	return sql + ";", nil
}

// upsertShaped detects INSERT ... ON DUPLICATE KEY UPDATE and REPLACE
// statements. The AST check is authoritative; the text scan survives only as
// a fallback for shapes the parser models as something else, and like every
// text scan over SQL it is a known-imprecise heuristic.
func upsertShaped(stmt ast.StmtNode, raw string) (string, bool) {
	if ins, ok := stmt.(*ast.InsertStmt); ok {
		if ins.IsReplace || len(ins.OnDuplicate) > 0 {
			return upsertAdvisory, true
		}
	}
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if strings.Contains(upper, "ON DUPLICATE KEY") || strings.HasPrefix(upper, "REPLACE ") {
		return upsertAdvisory, true
	}
	return "", false
}

// unixTimestampCollector gathers every UNIX_TIMESTAMP call in a statement.
type unixTimestampCollector struct {
	calls []*ast.FuncCallExpr
}

func (c *unixTimestampCollector) Enter(n ast.Node) (ast.Node, bool) {
	if fc, ok := n.(*ast.FuncCallExpr); ok && fc.FnName.L == "unix_timestamp" {
		c.calls = append(c.calls, fc)
	}
	return n, false
}

func (c *unixTimestampCollector) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}

// rewriteUnixTimestamp splices CAST(EXTRACT(EPOCH FROM ...) AS BIGINT) over
// every printed UNIX_TIMESTAMP call site. The MySQL printer cannot restore a
// synthesized EXTRACT(EPOCH ...) node, so the rewrite happens on printed
// text; the printer's determinism makes exact-match replacement sound.
// Outermost calls are replaced first so nested calls still match afterwards.
func rewriteUnixTimestamp(stmt ast.StmtNode, sql string) (string, error) {
	col := &unixTimestampCollector{}
	stmt.Accept(col)
	if len(col.calls) == 0 {
		return sql, nil
	}

	type replacement struct {
		from, to string
	}
	var repls []replacement
	seen := make(map[string]bool)
	for _, fc := range col.calls {
		from, err := restorePG(fc)
		if err != nil {
			return "", err
		}
		if seen[from] {
			continue
		}
		seen[from] = true

		arg := "CURRENT_TIMESTAMP"
		if len(fc.Args) > 0 {
			a, err := restorePG(fc.Args[0])
			if err != nil {
				return "", err
			}
			arg = a
		}
		repls = append(repls, replacement{
			from: from,
			to:   fmt.Sprintf("CAST(EXTRACT(EPOCH FROM %s) AS BIGINT)", arg),
		})
	}

	sort.SliceStable(repls, func(i, j int) bool { return len(repls[i].from) > len(repls[j].from) })
	for _, r := range repls {
		sql = strings.ReplaceAll(sql, r.from, r.to)
	}
	return sql, nil
}
