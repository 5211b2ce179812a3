package persistence

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// Las fechas se guardan en UTC con ancho fijo para que la comparación como texto
// en SQLite respete el orden cronológico.
const timeLayout = "2006-01-02T15:04:05.000000Z"

var parseLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func tsArg(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTsArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return tsArg(*t)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

type rowScanner interface {
	Scan(dest ...any) error
}

// timeScanner acepta time.Time (PostgreSQL) o texto (SQLite).
type timeScanner struct{ dst *time.Time }

func (s timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
		return nil
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("timeScanner: tipo no soportado %T", src)
	}
}

func (s timeScanner) parse(v string) error {
	v = strings.TrimSpace(v)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("timeScanner: fecha inválida %q", v)
}

// nullTimeScanner como timeScanner pero deja nil en NULL.
type nullTimeScanner struct{ dst **time.Time }

func (s nullTimeScanner) Scan(src any) error {
	if src == nil {
		*s.dst = nil
		return nil
	}
	var t time.Time
	if err := (timeScanner{dst: &t}).Scan(src); err != nil {
		return err
	}
	*s.dst = &t
	return nil
}

// rangeClause agrega las condiciones del rango sobre col.
func rangeClause(col string, r repository.DateRange, args []any) (string, []any) {
	var sb strings.Builder
	if !r.From.IsZero() {
		sb.WriteString(" AND " + col + " >= ?")
		args = append(args, tsArg(r.From))
	}
	if !r.To.IsZero() {
		sb.WriteString(" AND " + col + " < ?")
		args = append(args, tsArg(r.To))
	}
	return sb.String(), args
}

func limitClause(limit, offset int, args []any) (string, []any) {
	if limit <= 0 {
		return "", args
	}
	if offset < 0 {
		offset = 0
	}
	return " LIMIT ? OFFSET ?", append(args, limit, offset)
}
