package sitediff

import "sort"

// Compare merges two per-site status maps into report rows, one per path seen
// on either site, sorted by path so repeated runs diff cleanly.
func Compare(a, b map[string]int) []ComparisonRow {
	paths := make([]string, 0, len(a)+len(b))
	for p := range a {
		paths = append(paths, p)
	}
	for p := range b {
		if _, ok := a[p]; !ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	rows := make([]ComparisonRow, 0, len(paths))
	for _, p := range paths {
		row := ComparisonRow{Path: p}
		if code, ok := a[p]; ok {
			row.A = PageStatus{Code: code, Seen: true}
		}
		if code, ok := b[p]; ok {
			row.B = PageStatus{Code: code, Seen: true}
		}
		rows = append(rows, row)
	}
	return rows
}
