package main

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// convertCreateTable transforms a MySQL CREATE TABLE into PostgreSQL-executable
// text: one CREATE TABLE, then advisory comment lines, then standalone
// CREATE INDEX statements in their original declaration order, then trailing
// statements (COMMENT ON, optional triggers).
func convertCreateTable(stmt *ast.CreateTableStmt, cfg *ConvertConfig) (string, error) {
	if len(stmt.Cols) == 0 {
		// CREATE TABLE ... LIKE / ... AS SELECT carry no structured column
		// list; print as-is rather than fail.
		sql, err := restorePG(stmt)
		if err != nil {
			return "", err
		}
		return sql + ";", nil
	}

	tableSQL := tableNameSQL(stmt.Table)

	var (
		body       []string
		advisories []string
		indexes    []string
		extras     []string
	)

	for _, col := range stmt.Cols {
		def, adv, ext, err := renderColumnDef(col, stmt.Table, cfg)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col.Name.Name.O, err)
		}
		body = append(body, def)
		advisories = append(advisories, adv...)
		extras = append(extras, ext...)
	}

	for _, c := range stmt.Constraints {
		switch c.Tp {
		case ast.ConstraintIndex, ast.ConstraintKey, ast.ConstraintFulltext:
			// Inline secondary indexes have no PostgreSQL equivalent inside
			// the table body; they become standalone CREATE INDEX statements.
			idx, err := renderCreateIndex(c, tableSQL, cfg)
			if err != nil {
				return "", fmt.Errorf("index %s: %w", c.Name, err)
			}
			indexes = append(indexes, idx)
		default:
			cons, adv, err := renderTableConstraint(c)
			if err != nil {
				return "", fmt.Errorf("constraint %s: %w", c.Name, err)
			}
			if cons != "" {
				body = append(body, cons)
			}
			advisories = append(advisories, adv...)
		}
	}

	// MySQL table options (ENGINE, CHARSET, COLLATE, ROW_FORMAT, ...) have no
	// PostgreSQL equivalent and are dropped. A table comment survives as
	// COMMENT ON TABLE.
	for _, opt := range stmt.Options {
		if opt.Tp == ast.TableOptionComment && opt.StrValue != "" {
			extras = append(extras, fmt.Sprintf("COMMENT ON TABLE %s IS %s;", tableSQL, pgLiteral(opt.StrValue)))
		}
	}

	if stmt.Partition != nil {
		advisories = append(advisories, fmt.Sprintf(
			"-- TODO: table %s used MySQL partitioning; recreate partitions manually in PostgreSQL", tableSQL))
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if stmt.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	fmt.Fprintf(&b, "%s (\n", tableSQL)
	for i, line := range body {
		b.WriteString("  ")
		b.WriteString(line)
		if i < len(body)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(");")

	statements := []string{b.String()}
	statements = append(statements, advisories...)
	statements = append(statements, indexes...)
	statements = append(statements, extras...)
	return strings.Join(statements, "\n"), nil
}

// renderColumnDef renders one column definition for the table body. It also
// returns advisory comment lines and trailing statements produced by the
// column's options.
func renderColumnDef(col *ast.ColumnDef, table *ast.TableName, cfg *ConvertConfig) (def string, advisories, extras []string, err error) {
	name := col.Name.Name.O
	pgType, err := mapColumnType(col.Tp)
	if err != nil {
		return "", nil, nil, err
	}

	tableSQL := tableNameSQL(table)

	var b strings.Builder
	b.WriteString(pgIdent(name))
	b.WriteByte(' ')
	b.WriteString(pgType)

	// Option filtering is by kind, never by position: the surviving options
	// keep their declared order.
	for _, opt := range col.Options {
		switch opt.Tp {
		case ast.ColumnOptionNotNull:
			b.WriteString(" NOT NULL")
		case ast.ColumnOptionNull:
			// nullable is the default
		case ast.ColumnOptionDefaultValue:
			expr, rerr := restorePG(opt.Expr)
			if rerr != nil {
				return "", nil, nil, rerr
			}
			fmt.Fprintf(&b, " DEFAULT %s", expr)
		case ast.ColumnOptionAutoIncrement:
			// One-to-one replacement with the native identity column form.
			// BY DEFAULT matches AUTO_INCREMENT: explicit inserts stay legal.
			b.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
		case ast.ColumnOptionPrimaryKey:
			b.WriteString(" PRIMARY KEY")
		case ast.ColumnOptionUniqKey:
			b.WriteString(" UNIQUE")
		case ast.ColumnOptionCollate:
			// MySQL collation names rarely exist in PostgreSQL; dropped.
		case ast.ColumnOptionOnUpdate:
			if cfg.EmitOnUpdateTriggers && isCurrentTimestampCall(opt.Expr) {
				extras = append(extras, onUpdateTriggerSQL(tableSQL, table.Name.O, name)...)
			} else {
				advisories = append(advisories, fmt.Sprintf(
					"-- TODO: column %s used MySQL 'ON UPDATE CURRENT_TIMESTAMP'; implement via trigger in PostgreSQL",
					pgIdent(name)))
			}
		case ast.ColumnOptionComment:
			if s, ok := stringValue(opt.Expr); ok && s != "" {
				extras = append(extras, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;", tableSQL, pgIdent(name), pgLiteral(s)))
			}
		case ast.ColumnOptionGenerated:
			expr, rerr := restorePG(opt.Expr)
			if rerr != nil {
				return "", nil, nil, rerr
			}
			// PostgreSQL only materializes generated columns; VIRTUAL
			// becomes STORED.
			fmt.Fprintf(&b, " GENERATED ALWAYS AS (%s) STORED", expr)
		case ast.ColumnOptionCheck:
			expr, rerr := restorePG(opt.Expr)
			if rerr != nil {
				return "", nil, nil, rerr
			}
			fmt.Fprintf(&b, " CHECK (%s)", expr)
		case ast.ColumnOptionReference:
			if opt.Refer != nil {
				ref, rerr := renderReference(opt.Refer)
				if rerr != nil {
					return "", nil, nil, rerr
				}
				b.WriteByte(' ')
				b.WriteString(ref)
			}
		default:
			// COLUMN_FORMAT, STORAGE and friends have no PostgreSQL meaning.
		}
	}

	return b.String(), advisories, extras, nil
}

// renderTableConstraint renders a retained table-level constraint
// (primary key, unique, foreign key, check). Constraints it cannot express
// come back as advisory lines instead of silently vanishing.
func renderTableConstraint(c *ast.Constraint) (string, []string, error) {
	switch c.Tp {
	case ast.ConstraintPrimaryKey:
		cols, err := indexKeyList(c.Keys)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("PRIMARY KEY (%s)", cols), nil, nil
	case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
		cols, err := indexKeyList(c.Keys)
		if err != nil {
			return "", nil, err
		}
		// MySQL's `UNIQUE KEY name (cols)` becomes a named constraint.
		if c.Name != "" {
			return fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", pgIdent(c.Name), cols), nil, nil
		}
		return fmt.Sprintf("UNIQUE (%s)", cols), nil, nil
	case ast.ConstraintForeignKey:
		cols, err := indexKeyList(c.Keys)
		if err != nil {
			return "", nil, err
		}
		ref, err := renderReference(c.Refer)
		if err != nil {
			return "", nil, err
		}
		var b strings.Builder
		if c.Name != "" {
			fmt.Fprintf(&b, "CONSTRAINT %s ", pgIdent(c.Name))
		}
		fmt.Fprintf(&b, "FOREIGN KEY (%s) %s", cols, ref)
		return b.String(), nil, nil
	case ast.ConstraintCheck:
		expr, err := restorePG(c.Expr)
		if err != nil {
			return "", nil, err
		}
		if c.Name != "" {
			return fmt.Sprintf("CONSTRAINT %s CHECK (%s)", pgIdent(c.Name), expr), nil, nil
		}
		return fmt.Sprintf("CHECK (%s)", expr), nil, nil
	default:
		adv := fmt.Sprintf("-- TODO: constraint %q was not converted; review manually", c.Name)
		return "", []string{adv}, nil
	}
}

// renderCreateIndex emits a standalone CREATE INDEX for an extracted inline
// index. Explicit DESC markers are preserved; NULLS FIRST/LAST is never
// emitted (illegal on that position in PostgreSQL index columns); MySQL
// prefix lengths are dropped.
func renderCreateIndex(c *ast.Constraint, tableSQL string, cfg *ConvertConfig) (string, error) {
	if c.Tp == ast.ConstraintFulltext {
		return renderFulltextIndex(c, tableSQL, cfg)
	}

	cols := make([]string, 0, len(c.Keys))
	for _, key := range c.Keys {
		var s string
		switch {
		case key.Column != nil:
			s = pgIdent(key.Column.Name.O)
		case key.Expr != nil:
			expr, err := restorePG(key.Expr)
			if err != nil {
				return "", err
			}
			s = "(" + expr + ")"
		default:
			continue
		}
		if key.Desc {
			s += " DESC"
		}
		cols = append(cols, s)
	}

	// TiDB folds both MySQL positions of the index type (before and after
	// the column list) into the index option.
	using := ""
	if c.Option != nil && c.Option.Tp == ast.IndexTypeHash {
		using = " USING hash"
	}

	name := ""
	if c.Name != "" {
		name = " " + pgIdent(c.Name)
	}
	return fmt.Sprintf("CREATE INDEX%s ON %s%s (%s);", name, tableSQL, using, strings.Join(cols, ", ")), nil
}

// renderFulltextIndex approximates a MySQL FULLTEXT index with a GIN index
// over a tsvector of the space-joined, null-coalesced, text-cast columns.
// Best effort, not an equivalence: ranking and boolean-mode semantics differ.
func renderFulltextIndex(c *ast.Constraint, tableSQL string, cfg *ConvertConfig) (string, error) {
	parts := make([]string, 0, len(c.Keys))
	for _, key := range c.Keys {
		if key.Column == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("coalesce(%s::text, '')", pgIdent(key.Column.Name.O)))
	}

	var body string
	switch len(parts) {
	case 0:
		body = "''"
	case 1:
		body = parts[0]
	default:
		body = strings.Join(parts, " || ' ' || ")
	}

	name := ""
	if c.Name != "" {
		name = " " + pgIdent(c.Name)
	}
	return fmt.Sprintf("CREATE INDEX%s ON %s USING GIN (to_tsvector(%s, %s));",
		name, tableSQL, pgLiteral(cfg.TSVectorConfig), body), nil
}

// renderReference renders a REFERENCES clause with its ON DELETE/ON UPDATE
// rules.
func renderReference(ref *ast.ReferenceDef) (string, error) {
	if ref == nil || ref.Table == nil {
		return "", fmt.Errorf("foreign key without referenced table")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "REFERENCES %s", tableNameSQL(ref.Table))
	if len(ref.IndexPartSpecifications) > 0 {
		cols, err := indexKeyList(ref.IndexPartSpecifications)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " (%s)", cols)
	}
	if ref.OnDelete != nil && ref.OnDelete.ReferOpt != ast.ReferOptionNoOption {
		fmt.Fprintf(&b, " ON DELETE %s", ref.OnDelete.ReferOpt.String())
	}
	if ref.OnUpdate != nil && ref.OnUpdate.ReferOpt != ast.ReferOptionNoOption {
		fmt.Fprintf(&b, " ON UPDATE %s", ref.OnUpdate.ReferOpt.String())
	}
	return b.String(), nil
}

// indexKeyList joins constraint key parts as a quoted column list.
// Expression key parts are restored parenthesized.
func indexKeyList(keys []*ast.IndexPartSpecification) (string, error) {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if key.Column == nil {
			names = nil
			break
		}
		names = append(names, key.Column.Name.O)
	}
	if names != nil {
		return quotedColumnList(names), nil
	}

	cols := make([]string, 0, len(keys))
	for _, key := range keys {
		switch {
		case key.Column != nil:
			cols = append(cols, pgIdent(key.Column.Name.O))
		case key.Expr != nil:
			expr, err := restorePG(key.Expr)
			if err != nil {
				return "", err
			}
			cols = append(cols, "("+expr+")")
		}
	}
	return strings.Join(cols, ", "), nil
}

// tableNameSQL renders a possibly schema-qualified table reference with
// minimal quoting.
func tableNameSQL(t *ast.TableName) string {
	if t.Schema.O != "" {
		return pgIdent(t.Schema.O) + "." + pgIdent(t.Name.O)
	}
	return pgIdent(t.Name.O)
}

// isCurrentTimestampCall reports whether an ON UPDATE expression is a plain
// current-timestamp call, the only form the trigger emitter replicates.
func isCurrentTimestampCall(e ast.ExprNode) bool {
	fc, ok := e.(*ast.FuncCallExpr)
	if !ok {
		return false
	}
	switch fc.FnName.L {
	case "current_timestamp", "now", "localtime", "localtimestamp":
		return true
	}
	return false
}

// stringValue extracts a plain string from a parsed literal expression.
func stringValue(e ast.ExprNode) (string, bool) {
	ve, ok := e.(*driver.ValueExpr)
	if !ok {
		return "", false
	}
	switch v := ve.GetValue().(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}
