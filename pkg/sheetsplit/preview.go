package sheetsplit

// CommonColumns returns the header labels shared by every selected sheet
// that has data, in the column order of the first of them. These are the
// labels usable as key columns for a request over the selection.
func CommonColumns(wb *Workbook, sheetNames []string) ([]string, error) {
	sheets, err := wb.resolveSheets(sheetNames)
	if err != nil {
		return nil, err
	}

	var common []string
	first := true
	for _, s := range sheets {
		if s.IsEmpty() {
			continue
		}
		if first {
			for _, h := range s.Header {
				if h != "" && !contains(common, h) {
					common = append(common, h)
				}
			}
			first = false
			continue
		}
		kept := common[:0]
		for _, h := range common {
			if s.ColumnIndex(h) >= 0 {
				kept = append(kept, h)
			}
		}
		common = kept
	}
	return common, nil
}

// EstimateCount returns how many sheets (single mode) or archive entries
// (archive modes) a request would produce, without building them.
func EstimateCount(wb *Workbook, req Request) (int, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return 0, err
	}
	sheets, err := wb.resolveSheets(req.Sheets)
	if err != nil {
		return 0, err
	}
	if len(req.KeyColumns) == 0 {
		return 0, ErrNoKeyColumns
	}

	if mode == ModeUnionArchive {
		keys, err := unionGroups(sheets, req.KeyColumns)
		return len(keys), err
	}

	total := 0
	for _, s := range sheets {
		keys, err := DiscoverGroups(s, req.KeyColumns)
		if err != nil {
			return 0, err
		}
		total += len(keys)
	}
	return total, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
