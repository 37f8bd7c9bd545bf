package store

import (
	"fmt"
	"strings"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/schema"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Clause is one part of a query: a condition, an ordering or a limit.
// Clauses compose by listing them; conditions are ANDed.
type Clause interface {
	apply(q *query, t schema.Table) error
}

type cond struct {
	sql  string
	args []any
}

type query struct {
	conds  []cond
	orders []string
	limit  int
}

func buildQuery(t schema.Table, clauses []Clause) (*query, error) {
	q := &query{}
	for _, c := range clauses {
		if err := c.apply(q, t); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (q *query) scope(db *gorm.DB) *gorm.DB {
	for _, c := range q.conds {
		db = db.Where(c.sql, c.args...)
	}
	if len(q.orders) == 0 {
		db = db.Order(`"created_at" ASC`).Order(`"id" ASC`)
	}
	for _, o := range q.orders {
		db = db.Order(o)
	}
	if q.limit > 0 {
		db = db.Limit(q.limit)
	}
	return db
}

func (q *query) whereOnly(db *gorm.DB) *gorm.DB {
	for _, c := range q.conds {
		db = db.Where(c.sql, c.args...)
	}
	return db
}

func column(t schema.Table, name string) (string, error) {
	if _, ok := t.Column(name); !ok {
		return "", fmt.Errorf("%w: %s has no column %q", errConstraint, t.Name, name)
	}
	return `"` + name + `"`, nil
}

// arg converts values to what SQLite compares natively.
func arg(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return x.InexactFloat64()
	}
	return v
}

type compare struct {
	col string
	op  string
	val any
}

func (c compare) apply(q *query, t schema.Table) error {
	col, err := column(t, c.col)
	if err != nil {
		return err
	}
	if c.val == nil {
		switch c.op {
		case "=":
			q.conds = append(q.conds, cond{sql: col + " IS NULL"})
			return nil
		case "<>":
			q.conds = append(q.conds, cond{sql: col + " IS NOT NULL"})
			return nil
		}
	}
	q.conds = append(q.conds, cond{sql: col + " " + c.op + " ?", args: []any{arg(c.val)}})
	return nil
}

// Eq matches col = v. A nil v matches NULL.
func Eq(col string, v any) Clause { return compare{col, "=", v} }

// NotEq matches col <> v. A nil v matches NOT NULL.
func NotEq(col string, v any) Clause { return compare{col, "<>", v} }

func Gt(col string, v any) Clause  { return compare{col, ">", v} }
func Gte(col string, v any) Clause { return compare{col, ">=", v} }
func Lt(col string, v any) Clause  { return compare{col, "<", v} }
func Lte(col string, v any) Clause { return compare{col, "<=", v} }

type between struct {
	col      string
	from, to any
}

func (b between) apply(q *query, t schema.Table) error {
	col, err := column(t, b.col)
	if err != nil {
		return err
	}
	q.conds = append(q.conds, cond{sql: col + " BETWEEN ? AND ?", args: []any{arg(b.from), arg(b.to)}})
	return nil
}

// Between matches from <= col <= to.
func Between(col string, from, to any) Clause { return between{col, from, to} }

type in struct {
	col  string
	vals []any
}

func (c in) apply(q *query, t schema.Table) error {
	col, err := column(t, c.col)
	if err != nil {
		return err
	}
	if len(c.vals) == 0 {
		q.conds = append(q.conds, cond{sql: "1 = 0"})
		return nil
	}
	args := make([]any, len(c.vals))
	for i, v := range c.vals {
		args[i] = arg(v)
	}
	q.conds = append(q.conds, cond{sql: col + " IN ?", args: []any{args}})
	return nil
}

// In matches col against any of vals. An empty list matches nothing.
func In[V any](col string, vals ...V) Clause {
	anys := make([]any, len(vals))
	for i, v := range vals {
		anys[i] = v
	}
	return in{col, anys}
}

type contains struct {
	col  string
	text string
}

func (c contains) apply(q *query, t schema.Table) error {
	col, err := column(t, c.col)
	if err != nil {
		return err
	}
	q.conds = append(q.conds, cond{
		sql:  col + ` LIKE ? ESCAPE '\'`,
		args: []any{"%" + EscapeLike(c.text) + "%"},
	})
	return nil
}

// Contains matches rows whose col contains text, case-insensitively for ASCII.
// LIKE wildcards in text match literally.
func Contains(col, text string) Clause { return contains{col, text} }

// EscapeLike escapes the LIKE metacharacters %, _ and the escape character itself.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type anyOf []Clause

func (a anyOf) apply(q *query, t schema.Table) error {
	sub := &query{}
	for _, c := range a {
		if err := c.apply(sub, t); err != nil {
			return err
		}
	}
	if len(sub.conds) == 0 {
		return nil
	}
	parts := make([]string, len(sub.conds))
	var args []any
	for i, c := range sub.conds {
		parts[i] = "(" + c.sql + ")"
		args = append(args, c.args...)
	}
	q.conds = append(q.conds, cond{sql: "(" + strings.Join(parts, " OR ") + ")", args: args})
	return nil
}

// AnyOf ORs the conditions of its clauses. Orderings and limits inside are ignored.
func AnyOf(clauses ...Clause) Clause { return anyOf(clauses) }

type orderBy struct {
	col  string
	desc bool
}

func (o orderBy) apply(q *query, t schema.Table) error {
	col, err := column(t, o.col)
	if err != nil {
		return err
	}
	dir := " ASC"
	if o.desc {
		dir = " DESC"
	}
	q.orders = append(q.orders, col+dir)
	return nil
}

// OrderBy sorts ascending by col. Without any ordering results come back by
// created_at then id.
func OrderBy(col string) Clause     { return orderBy{col: col} }
func OrderByDesc(col string) Clause { return orderBy{col: col, desc: true} }

type limit int

func (l limit) apply(q *query, _ schema.Table) error {
	if l < 0 {
		return fmt.Errorf("%w: negative limit", errConstraint)
	}
	q.limit = int(l)
	return nil
}

// Limit caps the number of rows returned.
func Limit(n int) Clause { return limit(n) }
