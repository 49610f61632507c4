// Package listquery типизированный построитель фильтров для списков.
// Условия внутри одной группы объединяются через OR, группы между собой через AND.
// Значения всегда передаются параметрами, в текст запроса попадают только проверенные имена полей.
package listquery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpLt       Operator = "lt"
	OpLe       Operator = "le"
	OpGt       Operator = "gt"
	OpGe       Operator = "ge"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpContains Operator = "contains"
	OpIsNull   Operator = "is_null"
	OpNotNull  Operator = "not_null"
)

var fieldPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type Clause struct {
	Field string
	Op    Operator
	Value any
}

func Eq(field string, value any) Clause { return Clause{Field: field, Op: OpEq, Value: value} }
func Ne(field string, value any) Clause { return Clause{Field: field, Op: OpNe, Value: value} }
func Lt(field string, value any) Clause { return Clause{Field: field, Op: OpLt, Value: value} }
func Le(field string, value any) Clause { return Clause{Field: field, Op: OpLe, Value: value} }
func Gt(field string, value any) Clause { return Clause{Field: field, Op: OpGt, Value: value} }
func Ge(field string, value any) Clause { return Clause{Field: field, Op: OpGe, Value: value} }
func In(field string, value any) Clause { return Clause{Field: field, Op: OpIn, Value: value} }
func NotIn(field string, value any) Clause {
	return Clause{Field: field, Op: OpNotIn, Value: value}
}
func Contains(field string, value string) Clause {
	return Clause{Field: field, Op: OpContains, Value: value}
}
func IsNull(field string) Clause { return Clause{Field: field, Op: OpIsNull} }
func NotNull(field string) Clause { return Clause{Field: field, Op: OpNotNull} }

type orderTerm struct {
	field string
	asc   bool
	rank  []string
}

type Query struct {
	groups [][]Clause
	fields []string
	orders []orderTerm
	top    int
}

func New() *Query {
	return &Query{}
}

// Where добавляет группу условий, объединённых через OR
func (q *Query) Where(clauses ...Clause) *Query {
	if len(clauses) > 0 {
		q.groups = append(q.groups, clauses)
	}
	return q
}

func (q *Query) Select(fields ...string) *Query {
	q.fields = append(q.fields, fields...)
	return q
}

func (q *Query) OrderBy(field string, ascending bool) *Query {
	q.orders = append(q.orders, orderTerm{field: field, asc: ascending})
	return q
}

// OrderByRank сортировка по позиции значения в rank (от младшего к старшему)
func (q *Query) OrderByRank(field string, rank []string, ascending bool) *Query {
	q.orders = append(q.orders, orderTerm{field: field, asc: ascending, rank: rank})
	return q
}

func (q *Query) Top(n int) *Query {
	q.top = n
	return q
}

// Build собирает условие WHERE
func (q *Query) Build() (string, []any, error) {
	parts := make([]string, 0, len(q.groups))
	args := make([]any, 0, len(q.groups))
	for _, group := range q.groups {
		groupParts := make([]string, 0, len(group))
		for _, c := range group {
			sql, cArgs, err := c.build()
			if err != nil {
				return "", nil, err
			}
			groupParts = append(groupParts, sql)
			args = append(args, cArgs...)
		}
		if len(groupParts) == 1 {
			parts = append(parts, groupParts[0])
			continue
		}
		parts = append(parts, "("+strings.Join(groupParts, " OR ")+")")
	}
	return strings.Join(parts, " AND "), args, nil
}

// Apply переносит запрос на цепочку gorm; ошибка построения попадает в tx
func (q *Query) Apply(tx *gorm.DB) *gorm.DB {
	sql, args, err := q.Build()
	if err != nil {
		_ = tx.AddError(err)
		return tx
	}
	if sql != "" {
		tx = tx.Where(sql, args...)
	}
	if len(q.fields) > 0 {
		for _, field := range q.fields {
			if !fieldPattern.MatchString(field) {
				_ = tx.AddError(errors.Errorf("недопустимое имя поля: %q", field))
				return tx
			}
		}
		tx = tx.Select(q.fields)
	}
	if len(q.orders) > 0 {
		expr, err := q.orderExpr()
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}
		// все ключи одним выражением: clause.OrderBy с Expression не выводит Columns
		tx = tx.Clauses(clause.OrderBy{Expression: expr})
	}
	if q.top > 0 {
		tx = tx.Limit(q.top)
	}
	return tx
}

// orderExpr сортировка в порядке добавления ключей, через запятую
func (q *Query) orderExpr() (clause.Expr, error) {
	parts := make([]string, 0, len(q.orders))
	vars := []any{}
	for _, term := range q.orders {
		if !fieldPattern.MatchString(term.field) {
			return clause.Expr{}, errors.Errorf("недопустимое имя поля: %q", term.field)
		}
		sql, termVars := term.build()
		parts = append(parts, sql)
		vars = append(vars, termVars...)
	}
	return clause.Expr{SQL: strings.Join(parts, ", "), Vars: vars, WithoutParentheses: true}, nil
}

func (t orderTerm) build() (string, []any) {
	direction := " ASC"
	if !t.asc {
		direction = " DESC"
	}
	if len(t.rank) == 0 {
		return t.field + direction, nil
	}
	var sb strings.Builder
	vars := make([]any, 0, len(t.rank))
	sb.WriteString("CASE ")
	sb.WriteString(t.field)
	for k, value := range t.rank {
		sb.WriteString(fmt.Sprintf(" WHEN ? THEN %d", k))
		vars = append(vars, value)
	}
	sb.WriteString(" ELSE -1 END")
	sb.WriteString(direction)
	return sb.String(), vars
}

func (c Clause) build() (string, []any, error) {
	if !fieldPattern.MatchString(c.Field) {
		return "", nil, errors.Errorf("недопустимое имя поля: %q", c.Field)
	}
	switch c.Op {
	case OpEq:
		return c.Field + " = ?", []any{c.Value}, nil
	case OpNe:
		return c.Field + " <> ?", []any{c.Value}, nil
	case OpLt:
		return c.Field + " < ?", []any{c.Value}, nil
	case OpLe:
		return c.Field + " <= ?", []any{c.Value}, nil
	case OpGt:
		return c.Field + " > ?", []any{c.Value}, nil
	case OpGe:
		return c.Field + " >= ?", []any{c.Value}, nil
	case OpIn:
		return c.Field + " IN ?", []any{c.Value}, nil
	case OpNotIn:
		return c.Field + " NOT IN ?", []any{c.Value}, nil
	case OpContains:
		value, _ := c.Value.(string)
		return c.Field + " LIKE ?", []any{"%" + escapeLike(value) + "%"}, nil
	case OpIsNull:
		return c.Field + " IS NULL", nil, nil
	case OpNotNull:
		return c.Field + " IS NOT NULL", nil, nil
	}
	return "", nil, errors.Errorf("неизвестный оператор %q", c.Op)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
