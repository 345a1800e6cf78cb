package sheetsplit

import "sort"

// DiscoverGroups returns the distinct keys of one sheet in first-occurrence
// order. Rows with an empty key cell are skipped.
func DiscoverGroups(s *Sheet, labels []string) ([]GroupKey, error) {
	if s.IsEmpty() {
		if len(labels) == 0 {
			return nil, ErrNoKeyColumns
		}
		return nil, nil
	}
	cols, err := keyColumns(s, labels)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var keys []GroupKey
	for _, row := range s.Rows {
		key, ok := rowKey(row, cols)
		if !ok {
			continue
		}
		id := key.id()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

// DiscoverUnion returns the union of the keys of the selected sheets, sorted
// lexicographically. Keys from different sheets are merged by canonical
// string equality.
func DiscoverUnion(wb *Workbook, sheetNames []string, labels []string) ([]GroupKey, error) {
	sheets, err := wb.resolveSheets(sheetNames)
	if err != nil {
		return nil, err
	}
	return unionGroups(sheets, labels)
}

func unionGroups(sheets []*Sheet, labels []string) ([]GroupKey, error) {
	seen := make(map[string]struct{})
	var keys []GroupKey
	for _, s := range sheets {
		groups, err := DiscoverGroups(s, labels)
		if err != nil {
			return nil, err
		}
		for _, key := range groups {
			id := key.id()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys, nil
}
