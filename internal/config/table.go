package config

import (
	"sort"

	"github.com/magiconair/properties"
)

// Table is an immutable snapshot of loaded properties. A Store swaps in a new
// Table on Reset; snapshots obtained earlier keep their contents.
type Table struct {
	props *properties.Properties
}

func newTable(props *properties.Properties) *Table {
	if props == nil {
		return emptyTable()
	}
	return &Table{props: props}
}

func emptyTable() *Table {
	return &Table{props: properties.NewProperties()}
}

// Get returns the value stored under key.
func (t *Table) Get(key string) (string, bool) {
	return t.props.Get(key)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return t.props.Len()
}

// Keys returns the keys in sorted order.
func (t *Table) Keys() []string {
	keys := t.props.Keys()
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the entries.
func (t *Table) Map() map[string]string {
	return t.props.Map()
}
