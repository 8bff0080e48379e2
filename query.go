package plistentry

import "errors"

// AllKeys is the command-line spelling of MatchAll.
const AllKeys = "ALL"

// ErrEmptyQuery is returned by ParseQuery for an empty key.
var ErrEmptyQuery = errors.New("plistentry: empty key")

// Query selects the leaf entries a Printer emits.
type Query struct {
	all bool
	key string
}

// MatchAll returns a query that matches every leaf entry.
func MatchAll() Query {
	return Query{all: true}
}

// MatchKey returns a query that matches leaf entries whose key is exactly k.
// A key named "ALL" is matched literally.
func MatchKey(k string) Query {
	return Query{key: k}
}

// ParseQuery maps a command-line key to a Query: AllKeys becomes MatchAll,
// anything else MatchKey.
func ParseQuery(s string) (Query, error) {
	switch s {
	case "":
		return Query{}, ErrEmptyQuery
	case AllKeys:
		return MatchAll(), nil
	}
	return MatchKey(s), nil
}

func (q Query) Matches(k string) bool {
	return q.all || k == q.key
}

func (q Query) String() string {
	if q.all {
		return AllKeys
	}
	return q.key
}
