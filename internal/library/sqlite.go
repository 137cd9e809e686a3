package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

var errStopRows = errors.New("stop reading rows")

type columnKind int

const (
	columnJSON columnKind = iota
	columnReal
)

type column struct {
	name string
	kind columnKind
}

// columns returns the table layout for records of kind k. JSON columns hold
// encoded objects (or arrays), REAL columns plain numbers.
func (k Kind) columns() []column {
	switch k {
	case KindBinary:
		return []column{{"id1", columnJSON}, {"id2", columnJSON}, {"model_record", columnJSON}}
	case KindChemical:
		return []column{{"identifier", columnJSON}, {"segments", columnJSON}}
	default:
		return []column{{"identifier", columnJSON}, {"molarweight", columnReal}, {"model_record", columnJSON}}
	}
}

// sqliteElements reads the rows of a library table in rowid order and yields
// each row as the JSON object a file library would contain.
func sqliteElements(ctx context.Context, loc Location, kind Kind) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		conn, err := sqlite.OpenConn(loc.Path, sqlite.OpenReadOnly)
		if err != nil {
			yield(nil, fmt.Errorf("open sqlite library %s: %w", loc.Path, err))
			return
		}
		defer conn.Close()
		conn.SetInterrupt(ctx.Done())

		table := loc.Table
		if table == "" {
			table = kind.defaultTable()
		}
		cols := kind.columns()
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.name
		}
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(names, ", "), table)

		stopped := false
		err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				raw, err := rowElement(stmt, cols)
				if err != nil {
					return err
				}
				if !yield(raw, nil) {
					stopped = true
					return errStopRows
				}
				return nil
			},
		})
		if stopped {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("query sqlite library %s: %w", loc.Path, err))
		}
	}
}

func rowElement(stmt *sqlite.Stmt, cols []column) (json.RawMessage, error) {
	obj := make(map[string]any, len(cols))
	for i, c := range cols {
		if stmt.ColumnType(i) == sqlite.TypeNull {
			continue
		}
		switch c.kind {
		case columnReal:
			obj[c.name] = stmt.ColumnFloat(i)
		default:
			text := stmt.ColumnText(i)
			if !json.Valid([]byte(text)) {
				return nil, fmt.Errorf("column %s holds invalid JSON", c.name)
			}
			obj[c.name] = json.RawMessage(text)
		}
	}
	return json.Marshal(obj)
}
