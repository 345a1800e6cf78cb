package sheetsplit

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupKey identifies a group: one canonical string per key column, in
// key-column order. Single-column grouping uses a one-element key.
type GroupKey []string

// Equal reports element-wise equality.
func (k GroupKey) Equal(other GroupKey) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Less orders keys lexicographically element by element.
func (k GroupKey) Less(other GroupKey) bool {
	for i := 0; i < len(k) && i < len(other); i++ {
		if k[i] != other[i] {
			return k[i] < other[i]
		}
	}
	return len(k) < len(other)
}

func (k GroupKey) String() string {
	return strings.Join(k, "-")
}

// id is an unambiguous map key for the group.
func (k GroupKey) id() string {
	return strings.Join(k, "\x00")
}

// Canonical returns the comparison string of a cell value. The boolean is
// false for empty (nil) cells, which never belong to a group.
func Canonical(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// keyColumns maps key column labels to header positions.
func keyColumns(s *Sheet, labels []string) ([]int, error) {
	if len(labels) == 0 {
		return nil, ErrNoKeyColumns
	}
	idx := make([]int, len(labels))
	for i, label := range labels {
		for _, prev := range labels[:i] {
			if prev == label {
				return nil, newSplitError(s.Name, "discover", fmt.Errorf("%w: %q", ErrDuplicateColumn, label))
			}
		}
		pos := s.ColumnIndex(label)
		if pos < 0 {
			return nil, newSplitError(s.Name, "discover", fmt.Errorf("%w: %q", ErrColumnNotFound, label))
		}
		idx[i] = pos
	}
	return idx, nil
}

// rowKey builds the key of a row. It returns false when any key cell is empty.
func rowKey(row Row, cols []int) (GroupKey, bool) {
	key := make(GroupKey, len(cols))
	for i, c := range cols {
		if c >= len(row) {
			return nil, false
		}
		s, ok := Canonical(row[c])
		if !ok {
			return nil, false
		}
		key[i] = s
	}
	return key, true
}
