package main

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"
)

// convertLimitedDelete rewrites MySQL's DELETE ... [WHERE] [ORDER BY] LIMIT n
// into a ctid subquery, the only way PostgreSQL can bound a delete by row
// count. A missing limit expression defaults to 0: deleting nothing is the
// conservative reading, an unbounded delete is not.
func convertLimitedDelete(stmt *ast.DeleteStmt) (string, error) {
	ts, ok := singleTableTarget(stmt.TableRefs)
	if !ok {
		return "", fmt.Errorf("row-limited DELETE over joined tables cannot be rewritten")
	}
	tn, ok := ts.Source.(*ast.TableName)
	if !ok {
		return "", fmt.Errorf("row-limited DELETE target is not a plain table")
	}
	table := tableNameSQL(tn)

	where := "TRUE"
	if stmt.Where != nil {
		w, err := restorePG(stmt.Where)
		if err != nil {
			return "", err
		}
		where = w
	}

	order := ""
	if stmt.Order != nil {
		o, err := restorePG(stmt.Order)
		if err != nil {
			return "", err
		}
		order = " " + o
	}

	limit := "0"
	if stmt.Limit != nil && stmt.Limit.Count != nil {
		n, err := restorePG(stmt.Limit.Count)
		if err != nil {
			return "", err
		}
		limit = n
	}

	// The repeated outer predicate is parenthesized: the printer emits no
	// precedence parentheses of its own, and a bare top-level OR would absorb
	// the ctid conjunct and delete without the row bound.
	inner := fmt.Sprintf("SELECT ctid FROM %s WHERE %s%s LIMIT %s", table, where, order, limit)
	if stmt.Where != nil {
		return fmt.Sprintf("DELETE FROM %s WHERE (%s) AND ctid IN (%s);", table, where, inner), nil
	}
	return fmt.Sprintf("DELETE FROM %s WHERE ctid IN (%s);", table, inner), nil
}

// convertJoinUpdate rewrites MySQL's UPDATE t1 JOIN t2 ON ... SET ... WHERE ...
// into PostgreSQL's UPDATE ... SET ... FROM ... WHERE ...: joined sources move
// to the FROM list, every ON predicate and the original WHERE fold into one
// AND-combined predicate (each conjunct parenthesized), and SET targets lose
// their own-table qualifier.
func convertJoinUpdate(stmt *ast.UpdateStmt) (string, error) {
	target, froms, conds, err := flattenUpdateJoins(stmt.TableRefs)
	if err != nil {
		return "", err
	}
	if len(froms) == 0 {
		// No joins after all; print unchanged.
		sql, err := restorePG(stmt)
		if err != nil {
			return "", err
		}
		return sql + ";", nil
	}

	tn, ok := target.Source.(*ast.TableName)
	if !ok {
		return "", fmt.Errorf("multi-table UPDATE target is not a plain table")
	}
	targetSQL := tableNameSQL(tn)
	alias := target.AsName
	if alias.O != "" {
		targetSQL += " AS " + pgIdent(alias.O)
	}

	if stmt.Where != nil {
		conds = append(conds, stmt.Where)
	}
	condSQL := make([]string, 0, len(conds))
	for _, c := range conds {
		s, err := restorePG(c)
		if err != nil {
			return "", err
		}
		condSQL = append(condSQL, s)
	}
	// Each conjunct is parenthesized before joining so a top-level OR inside
	// one ON clause cannot regroup with its neighbors.
	where := "TRUE"
	switch len(condSQL) {
	case 0:
	case 1:
		where = condSQL[0]
	default:
		for i, s := range condSQL {
			condSQL[i] = "(" + s + ")"
		}
		where = strings.Join(condSQL, " AND ")
	}

	fromSQL := make([]string, 0, len(froms))
	for _, f := range froms {
		s, err := restorePG(f)
		if err != nil {
			return "", err
		}
		fromSQL = append(fromSQL, s)
	}

	sets := make([]string, 0, len(stmt.List))
	for _, a := range stmt.List {
		lhs, err := updateSetLHS(a.Column, tn, alias.L)
		if err != nil {
			return "", err
		}
		rhs, err := restorePG(a.Expr)
		if err != nil {
			return "", err
		}
		sets = append(sets, lhs+"="+rhs)
	}

	return fmt.Sprintf("UPDATE %s SET %s FROM %s WHERE %s;",
		targetSQL, strings.Join(sets, ", "), strings.Join(fromSQL, ", "), where), nil
}

// updateSetLHS renders a SET target column. PostgreSQL rejects the update
// target's own qualifier on the left-hand side, whether written as the alias
// or as the table name, so both are stripped.
func updateSetLHS(col *ast.ColumnName, target *ast.TableName, aliasL string) (string, error) {
	q := col.Table.L
	if q == "" || q == aliasL || q == target.Name.L {
		return pgIdent(col.Name.O), nil
	}
	return restorePG(col)
}

// convertInsertIgnore rewrites INSERT IGNORE by clearing the ignore flag and
// appending ON CONFLICT DO NOTHING. The containment guard keeps the rewrite
// idempotent if a conflict clause is somehow already present.
func convertInsertIgnore(stmt *ast.InsertStmt) (string, error) {
	stmt.IgnoreErr = false
	sql, err := restorePG(stmt)
	if err != nil {
		return "", err
	}
	if !strings.Contains(strings.ToUpper(sql), "ON CONFLICT") {
		sql = strings.TrimRight(sql, "; \n\t") + " ON CONFLICT DO NOTHING"
	}
	return sql + ";", nil
}

// singleTableTarget returns the sole table source of a refs clause, or false
// when the clause joins more than one source.
func singleTableTarget(refs *ast.TableRefsClause) (*ast.TableSource, bool) {
	if refs == nil || refs.TableRefs == nil || refs.TableRefs.Right != nil {
		return nil, false
	}
	ts, ok := refs.TableRefs.Left.(*ast.TableSource)
	return ts, ok
}

// hasJoins reports whether an UPDATE's table refs clause carries at least one
// join.
func hasJoins(refs *ast.TableRefsClause) bool {
	return refs != nil && refs.TableRefs != nil && refs.TableRefs.Right != nil
}

// flattenUpdateJoins walks a (possibly nested) join tree left to right: the
// leftmost table source is the update target; every joined source and ON
// predicate is collected in declaration order.
func flattenUpdateJoins(refs *ast.TableRefsClause) (target *ast.TableSource, froms []*ast.TableSource, conds []ast.ExprNode, err error) {
	if refs == nil || refs.TableRefs == nil {
		return nil, nil, nil, fmt.Errorf("UPDATE has no table references")
	}

	var walk func(n ast.ResultSetNode) error
	walk = func(n ast.ResultSetNode) error {
		switch x := n.(type) {
		case *ast.Join:
			if err := walk(x.Left); err != nil {
				return err
			}
			if x.Right != nil {
				ts, ok := x.Right.(*ast.TableSource)
				if !ok {
					return fmt.Errorf("unsupported join source in multi-table UPDATE")
				}
				froms = append(froms, ts)
				if x.On != nil {
					conds = append(conds, x.On.Expr)
				}
			}
			return nil
		case *ast.TableSource:
			if target == nil {
				target = x
			} else {
				froms = append(froms, x)
			}
			return nil
		default:
			return fmt.Errorf("unsupported table reference in multi-table UPDATE")
		}
	}
	if err := walk(refs.TableRefs); err != nil {
		return nil, nil, nil, err
	}
	if target == nil {
		return nil, nil, nil, fmt.Errorf("UPDATE has no target table")
	}
	return target, froms, conds, nil
}
