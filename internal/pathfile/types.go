package pathfile

import "errors"

// ErrNotFound is returned when no row carries the requested group id
var ErrNotFound = errors.New("group id not found")

// Table represents a loaded path table, rows in file order
type Table struct {
	Rows []Row
}

// Row represents one group row of a path table
type Row struct {
	Index      int // position among data rows, 0-based
	GroupID    int64
	Path       string
	Attributes map[string]string // remaining columns keyed by header name
}
