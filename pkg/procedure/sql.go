package procedure

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

// dialect renders the statement that calls a stored function and returns its
// result as JSON text.
type dialect interface {
	statement(target Target, name string, params Params) (string, []any, error)
}

// SQL calls stored functions over a direct database connection.
type SQL struct {
	db      *gorm.DB
	dialect dialect
}

func NewSQL(db *gorm.DB) (*SQL, error) {
	d, err := dialectFor(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	return &SQL{db: db, dialect: d}, nil
}

func dialectFor(name string) (dialect, error) {
	switch name {
	case "postgres":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("procedure calls are not supported on %q", name)
	}
}

// Statement exposes the rendered call for a dialect, mainly for diagnostics.
func Statement(dialectName string, target Target, name string, params Params) (string, []any, error) {
	d, err := dialectFor(dialectName)
	if err != nil {
		return "", nil, err
	}
	return d.statement(target, name, params)
}

func (s *SQL) Call(ctx context.Context, target Target, name string, params Params) (json.RawMessage, error) {
	query, args, err := s.dialect.statement(target, name, params)
	if err != nil {
		return nil, err
	}

	// The pool is used directly: gorm's Raw would expand slice arguments into
	// value lists, and array parameters must reach the driver intact.
	var out sql.NullString
	if err := s.db.ConnPool.QueryRowContext(ctx, query, args...).Scan(&out); err != nil {
		return nil, err
	}

	if !out.Valid {
		return json.RawMessage("null"), nil
	}

	if !json.Valid([]byte(out.String)) {
		return nil, ErrInvalidPayload
	}

	return json.RawMessage(out.String), nil
}

type postgresDialect struct{}

// Named notation lets the server match parameters by name, so argument types
// are inferred from the function signature.
func (postgresDialect) statement(target Target, name string, params Params) (string, []any, error) {
	ident := pgx.Identifier{name}
	if target != DefaultTarget {
		ident = pgx.Identifier{string(target), name}
	}

	args := make([]any, 0, len(params))
	named := make([]string, 0, len(params))
	for i, p := range params {
		if !validParamName(p.Name) {
			return "", nil, fmt.Errorf("invalid parameter name %q", p.Name)
		}
		named = append(named, fmt.Sprintf("%s => $%d", p.Name, i+1))
		args = append(args, p.Value)
	}

	query := fmt.Sprintf("SELECT (%s(%s))::text", ident.Sanitize(), strings.Join(named, ", "))
	return query, args, nil
}

type mysqlDialect struct{}

// MySQL has no named notation; arguments are bound in declaration order and
// composite values travel as JSON documents.
func (mysqlDialect) statement(target Target, name string, params Params) (string, []any, error) {
	fn := quoteMySQL(name)
	if target != DefaultTarget {
		fn = quoteMySQL(string(target)) + "." + fn
	}

	args := make([]any, 0, len(params))
	marks := make([]string, 0, len(params))
	for _, p := range params {
		v, err := mysqlValue(p.Value)
		if err != nil {
			return "", nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		marks = append(marks, "?")
		args = append(args, v)
	}

	query := fmt.Sprintf("SELECT CAST(%s(%s) AS CHAR)", fn, strings.Join(marks, ", "))
	return query, args, nil
}

func mysqlValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	default:
		return v, nil
	}
}

func quoteMySQL(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
