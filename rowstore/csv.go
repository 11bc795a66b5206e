package rowstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/erbatch/core"
)

// DefaultIDAttr is the column holding the record ID.
const DefaultIDAttr = "id"

// CSVOptions configures LoadCSV.
type CSVOptions struct {
	// IDAttr names the ID column. Defaults to DefaultIDAttr.
	IDAttr string

	// ClusterAttr, when set and present on a row, is coerced to a canonical
	// integer ("007" becomes "7"). Rows without the column are kept as is.
	ClusterAttr string

	// Comma is the field delimiter. Defaults to ','.
	Comma rune
}

func (o CSVOptions) withDefaults() CSVOptions {
	if o.IDAttr == "" {
		o.IDAttr = DefaultIDAttr
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
	return o
}

// LoadCSV reads a header-first CSV document into a Store.
// Each data line becomes one row whose attributes are keyed by header name.
func LoadCSV(r io.Reader, opts CSVOptions) (*Store, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.Comma = opts.Comma
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header = trimAll(header)
	// encoding/csv keeps a UTF-8 BOM as part of the first field
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idCol := indexOf(header, opts.IDAttr)
	if idCol < 0 {
		return nil, &core.SchemaError{Attr: opts.IDAttr, Reason: fmt.Sprintf("header has no %q column", opts.IDAttr)}
	}

	b := NewBuilder(0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		rawID := strings.TrimSpace(record[idCol])
		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil {
			return nil, core.InvalidAttribute(opts.IDAttr,
				fmt.Sprintf("line %d: id %q is not a non-negative integer", line, rawID), err)
		}

		attrs := make(map[string]string, len(header))
		for j, val := range record {
			if j < len(header) {
				attrs[header[j]] = val
			}
		}

		if opts.ClusterAttr != "" {
			if v, ok := attrs[opts.ClusterAttr]; ok {
				n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
				if err != nil {
					se := core.InvalidAttribute(opts.ClusterAttr,
						fmt.Sprintf("cluster label %q is not an integer", v), err)
					se.ID, se.HasID = core.ID(id), true
					return nil, se
				}
				attrs[opts.ClusterAttr] = strconv.FormatInt(n, 10)
			}
		}

		if err := b.Add(Row{ID: core.ID(id), Attrs: attrs}); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
