package pathfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// Delimiter separates columns in path tables written by the optimizer
const Delimiter = '|'

// Load reads a pipe-delimited path table from disk
func Load(filePath string) (*Table, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open path table: %w", err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return table, nil
}

// Parse reads a path table from r. The header row must name the
// group_id and path columns; rows with a non-integer group_id are skipped.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty path table")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := makeIndex(header)
	for _, required := range []string{"group_id", "path"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	table := &Table{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// *csv.ParseError carries the line number
			return nil, err
		}

		rawID := getField(record, idx, "group_id")
		groupID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			line, _ := reader.FieldPos(0)
			log.Printf("Warning: skipping line %d, invalid group_id %q", line, rawID)
			continue
		}

		row := Row{
			Index:      len(table.Rows),
			GroupID:    groupID,
			Path:       getRawField(record, idx, "path"),
			Attributes: make(map[string]string, len(idx)),
		}
		for name := range idx {
			if name == "group_id" || name == "path" {
				continue
			}
			row.Attributes[name] = getField(record, idx, name)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Lookup returns the first row matching groupID; its Path is the group's path string
func (t *Table) Lookup(groupID int64) (Row, error) {
	for _, row := range t.Rows {
		if row.GroupID == groupID {
			return row, nil
		}
	}
	return Row{}, fmt.Errorf("%w: %d", ErrNotFound, groupID)
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := idx[name]; dup {
			continue
		}
		idx[name] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, field string) string {
	return strings.TrimSpace(getRawField(record, idx, field))
}

// getRawField keeps surrounding whitespace; path locations are compared verbatim
func getRawField(record []string, idx map[string]int, field string) string {
	if i, ok := idx[field]; ok && i < len(record) {
		return record[i]
	}
	return ""
}
