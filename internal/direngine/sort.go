package direngine

import "strings"

// sortEntries stably sorts entries in place according to sortOpts
// (spec.md §4.4.1: size, mtime or name key; case-insensitive name sort
// unless DirsortCase; comparison reversed if DirsortDescending). A plain
// bottom-up merge sort is used rather than sort.SliceStable so the
// implementation matches spec.md §8 property 4 by construction (stable
// merge, not merely "some stable sort").
func sortEntries(entries []Entry, sortOpts byte) {
	if len(entries) < 2 {
		return
	}
	less := comparatorFor(sortOpts)
	buf := make([]Entry, len(entries))
	mergeSort(entries, buf, less)
}

func comparatorFor(sortOpts byte) func(a, b Entry) bool {
	descending := sortOpts&DirsortDescending != 0
	var cmp func(a, b Entry) int
	switch {
	case sortOpts&DirsortSize != 0:
		cmp = func(a, b Entry) int {
			switch {
			case a.Size < b.Size:
				return -1
			case a.Size > b.Size:
				return 1
			default:
				return 0
			}
		}
	case sortOpts&DirsortModified != 0:
		cmp = func(a, b Entry) int {
			switch {
			case a.MTime < b.MTime:
				return -1
			case a.MTime > b.MTime:
				return 1
			default:
				return 0
			}
		}
	default:
		caseSensitive := sortOpts&DirsortCase != 0
		cmp = func(a, b Entry) int {
			an, bn := a.Name, b.Name
			if !caseSensitive {
				an, bn = strings.ToLower(an), strings.ToLower(bn)
			}
			return strings.Compare(an, bn)
		}
	}
	return func(a, b Entry) bool {
		c := cmp(a, b)
		if descending {
			return c > 0
		}
		return c < 0
	}
}

// mergeSort is a textbook stable bottom-up merge sort over a slice,
// reusing buf as scratch space across levels.
func mergeSort(data, buf []Entry, less func(a, b Entry) bool) {
	n := len(data)
	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			mid := min(i+width, n)
			end := min(i+2*width, n)
			merge(data[i:end], buf[i:end], mid-i, less)
		}
	}
}

func merge(dst, scratch []Entry, midOffset int, less func(a, b Entry) bool) {
	left := dst[:midOffset]
	right := dst[midOffset:]
	li, ri, k := 0, 0, 0
	for li < len(left) && ri < len(right) {
		if !less(right[ri], left[li]) {
			scratch[k] = left[li]
			li++
		} else {
			scratch[k] = right[ri]
			ri++
		}
		k++
	}
	for li < len(left) {
		scratch[k] = left[li]
		li++
		k++
	}
	for ri < len(right) {
		scratch[k] = right[ri]
		ri++
		k++
	}
	copy(dst, scratch)
}
