package sheetsplit

// FilterRows returns, in source order, the rows whose key cells match key.
// Cells are compared through their canonical strings so a numeric 7 in one
// sheet matches a text "7" in another.
func FilterRows(s *Sheet, labels []string, key GroupKey) ([]Row, error) {
	if s.IsEmpty() {
		return nil, nil
	}
	cols, err := keyColumns(s, labels)
	if err != nil {
		return nil, err
	}
	if len(key) != len(cols) {
		return nil, nil
	}

	var out []Row
	for _, row := range s.Rows {
		if matches(row, cols, key) {
			out = append(out, row)
		}
	}
	return out, nil
}

func matches(row Row, cols []int, key GroupKey) bool {
	for i, c := range cols {
		if c >= len(row) {
			return false
		}
		s, ok := Canonical(row[c])
		if !ok || s != key[i] {
			return false
		}
	}
	return true
}
