// Package dbmod is a native extension module dispatching db.open(dsn) to
// whichever database/sql driver matches the DSN's URL scheme, one of the
// concrete components demonstrating a native module whose functions
// block on I/O (spec §4.J, §5).
package dbmod

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"kslang/internal/callable"
	"kslang/internal/container"
	"kslang/internal/kerr"
	"kslang/internal/module"
	"kslang/internal/object"
	"kslang/internal/value"
)

func init() {
	module.Register("db", newModule)
}

func newModule(argc int, argv []string) (*module.Module, error) {
	m := module.New("db", "<builtin>")
	m.Set("open", callable.NewCFunc("db.open", 1, openFn))
	return m, nil
}

// driverFor maps a DSN's URL scheme to the database/sql driver name and
// the DSN string that driver expects. postgres and sqlserver accept the
// full URL as-is; mysql and sqlite want the scheme prefix stripped.
func driverFor(scheme, dsn string) (driverName, sqlDSN string, ok bool) {
	switch scheme {
	case "sqlite", "sqlite3", "file":
		return "sqlite3", strings.TrimPrefix(dsn, scheme+"://"), true
	case "postgres", "postgresql":
		return "postgres", dsn, true
	case "mysql":
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), true
	case "sqlserver", "mssql":
		return "sqlserver", dsn, true
	}
	return "", "", false
}

func openFn(args []object.Value) (object.Value, error) {
	dsnv, ok := args[0].(*value.Str)
	object.DecRef(args[0])
	if !ok {
		return nil, kerr.New(kerr.TypeError, "db.open: expected str dsn")
	}
	dsn := dsnv.S
	u, perr := url.Parse(dsn)
	if perr != nil {
		return nil, kerr.New(kerr.InternalError, "db.open: %v", perr)
	}
	driverName, sqlDSN, ok := driverFor(u.Scheme, dsn)
	if !ok {
		return nil, kerr.New(kerr.InternalError, "db.open: unsupported scheme %q", u.Scheme)
	}
	db, oerr := sql.Open(driverName, sqlDSN)
	if oerr != nil {
		return nil, kerr.New(kerr.InternalError, "db.open: %v", oerr)
	}
	return newDBConn(db), nil
}

type dbConn struct {
	object.Header
	db    *sql.DB
	Attrs map[string]object.Value
}

var DBConnType = object.NewType("dbconn")

func init() {
	DBConnType.Slots.Str = func(v object.Value) (string, error) { return "<dbconn>", nil }
	DBConnType.Slots.Repr = DBConnType.Slots.Str
	DBConnType.Slots.GetAttr = func(self object.Value, name string) (object.Value, error) {
		c := self.(*dbConn)
		v, ok := c.Attrs[name]
		if !ok {
			return nil, kerr.New(kerr.AttrError, "dbconn has no attribute %q", name)
		}
		object.IncRef(v)
		return v, nil
	}
}

func (c *dbConn) DecRef() {
	c.Header.DecRef(func() {
		for _, v := range c.Attrs {
			object.DecRef(v)
		}
		c.db.Close()
	})
}

func newDBConn(db *sql.DB) *dbConn {
	c := &dbConn{Header: object.NewHeader(DBConnType), db: db, Attrs: make(map[string]object.Value)}
	c.Attrs["exec"] = callable.NewCFunc("dbconn.exec", 1, func(a []object.Value) (object.Value, error) {
		q, ok := a[0].(*value.Str)
		object.DecRef(a[0])
		if !ok {
			return nil, kerr.New(kerr.TypeError, "dbconn.exec: expected str query")
		}
		res, eerr := db.Exec(q.S)
		if eerr != nil {
			return nil, kerr.New(kerr.InternalError, "dbconn.exec: %v", eerr)
		}
		n, _ := res.RowsAffected()
		return value.NewInt(n), nil
	})
	c.Attrs["query"] = callable.NewCFunc("dbconn.query", 1, func(a []object.Value) (object.Value, error) {
		q, ok := a[0].(*value.Str)
		object.DecRef(a[0])
		if !ok {
			return nil, kerr.New(kerr.TypeError, "dbconn.query: expected str query")
		}
		rows, qerr := db.Query(q.S)
		if qerr != nil {
			return nil, kerr.New(kerr.InternalError, "dbconn.query: %v", qerr)
		}
		defer rows.Close()
		cols, _ := rows.Columns()
		out := container.NewList()
		for rows.Next() {
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			if serr := rows.Scan(ptrs...); serr != nil {
				return nil, kerr.New(kerr.InternalError, "dbconn.query: %v", serr)
			}
			row := container.NewDict()
			for i, col := range cols {
				if serr := row.Set(value.NewStr(col), value.NewStr(fmt.Sprint(vals[i]))); serr != nil {
					return nil, serr
				}
			}
			out.Push(row)
		}
		return out, nil
	})
	c.Attrs["close"] = callable.NewCFunc("dbconn.close", 0, func(a []object.Value) (object.Value, error) {
		db.Close()
		return value.NoneVal(), nil
	})
	return c
}
