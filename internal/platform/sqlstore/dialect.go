// Package sqlstore implements the entity stores on database/sql. The
// postgres and sqlite backends share it and differ only in their Dialect.
package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect captures what differs between the SQL backends.
type Dialect struct {
	// Name identifies the dialect in logs.
	Name string

	// Numbered reports whether placeholders are written $1, $2, ...
	// instead of ?.
	Numbered bool

	// MapError translates a driver error onto the store sentinels.
	MapError func(err error) error
}

// Rebind rewrites the ? placeholders of query for d.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d Dialect) mapError(err error) error {
	if err == nil || d.MapError == nil {
		return err
	}
	return d.MapError(err)
}
