package direngine

import (
	"strings"

	"github.com/FujiNetWIFI/tnfsd/internal/pattern"
)

// Extended-iterator ";flags" suffix letters (spec.md §4.4.2).
const (
	optUppercase      = 'u'
	optLowercase      = 'l'
	optCamelCase      = 'c'
	optExcludeDirs    = 'd'
	optExcludeFiles   = 'f'
	optExcludeDotfile = 'x'
	optReverse        = 'r'
	optShuffle        = 's'
)

// ExtIterator is the streaming/extended directory iterator of spec.md
// §4.4.2: a pre-sorted name list walked with a forward, reverse or
// shuffle increment, applying case-transform and exclusion flags entry by
// entry.
type ExtIterator struct {
	names  []string // alphabetically, case-insensitively pre-sorted
	isDir  []bool
	wildcard string

	at, at0, inc, total, visited int

	excludeDirs, excludeFiles, excludeDot bool
	upper, lower, camel                   bool
}

// NewExtIterator builds an iterator over names/dirFlags (already scanned
// from the host directory) honoring the trailing ";flags" suffix and an
// optional wildcard mask.
func NewExtIterator(names []string, isDir []bool, wildcard, suffix string) *ExtIterator {
	sortNamesCaseInsensitive(names, isDir)

	it := &ExtIterator{
		names:    names,
		isDir:    isDir,
		wildcard: wildcard,
		total:    len(names),
	}
	it.excludeDirs = strings.ContainsRune(suffix, optExcludeDirs)
	it.excludeFiles = strings.ContainsRune(suffix, optExcludeFiles)
	it.excludeDot = strings.ContainsRune(suffix, optExcludeDotfile)
	it.upper = strings.ContainsRune(suffix, optUppercase)
	it.lower = strings.ContainsRune(suffix, optLowercase)
	it.camel = strings.ContainsRune(suffix, optCamelCase)
	reverse := strings.ContainsRune(suffix, optReverse)

	if idx := strings.IndexByte(suffix, optShuffle); idx >= 0 && it.total > 1 {
		var seed byte
		if idx+1 < len(suffix) {
			seed = suffix[idx+1]
		}
		it.at, it.inc = shuffleStart(it.total, seed)
	} else if reverse && it.total > 0 {
		it.at = it.total - 1
		it.inc = -1
	} else {
		it.at = 0
		it.inc = 1
	}
	it.at0 = it.at
	return it
}

// Tell returns the number of entries visited so far, counting entries
// that Next skipped because of filters (spec.md §4.4.4: streaming-handle
// tell/seek defer to the host iterator).
func (it *ExtIterator) Tell() int { return it.visited }

// Seek restores the iterator to the position it held when Tell returned
// pos, i.e. after pos entries had been visited (filtered entries
// included), by replaying the raw increment from the iterator's starting
// index. pos is clamped to [0, total].
func (it *ExtIterator) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > it.total {
		pos = it.total
	}
	it.at = it.at0
	if it.total > 0 {
		for i := 0; i < pos; i++ {
			it.at = ((it.at+it.inc)%it.total + it.total) % it.total
		}
	}
	it.visited = pos
}

// Done reports whether every entry has been visited (spec.md §4.4.2:
// "Termination is signaled when visited == total").
func (it *ExtIterator) Done() bool { return it.visited >= it.total }

// Next returns the next transformed name, or ok=false once Done.
func (it *ExtIterator) Next() (name string, ok bool) {
	for it.visited < it.total {
		idx := it.at
		if it.total > 0 {
			it.at = ((it.at+it.inc)%it.total + it.total) % it.total
		}
		it.visited++

		n := it.names[idx]
		dir := it.isDir[idx]

		if it.excludeDot && strings.HasPrefix(n, ".") {
			continue
		}
		if it.wildcard != "" && !pattern.Match(it.wildcard, n) {
			continue
		}
		if it.excludeDirs && dir {
			continue
		}
		if it.excludeFiles && !dir {
			continue
		}
		return transformCase(n, it.upper, it.lower, it.camel), true
	}
	return "", false
}

func transformCase(n string, upper, lower, camel bool) string {
	switch {
	case lower:
		return strings.ToLower(n)
	case upper:
		return strings.ToUpper(n)
	case camel:
		return camelCase(n)
	default:
		return n
	}
}

// camelCase upper-cases the first rune and every rune following
// whitespace or a control character (byte <= 32), lower-casing the rest —
// the original daemon's "Camel Case" transform.
func camelCase(n string) string {
	b := []byte(n)
	boundary := true
	for i, c := range b {
		if boundary {
			if c >= 'a' && c <= 'z' {
				b[i] = c - ('a' - 'A')
			}
		} else if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
		boundary = c <= 32
	}
	return string(b)
}

func sortNamesCaseInsensitive(names []string, isDir []bool) {
	n := len(names)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && strings.ToLower(names[j-1]) > strings.ToLower(names[j]); j-- {
			names[j-1], names[j] = names[j], names[j-1]
			isDir[j-1], isDir[j] = isDir[j], isDir[j-1]
		}
	}
}

// shuffleStart picks the shuffle iterator's starting index and stride
// (spec.md §4.4.2: "a prime stride next_prime(n + seed*7) modulo n"). The
// start is 0; only the stride depends on the seed byte. When that prime is
// n itself (seed 0 with a prime n) the next prime is used instead, so the
// stride is always coprime to n and every seed gives a full-period
// traversal order. Seeds whose strides are equal modulo n give the same
// order.
func shuffleStart(n int, seed byte) (at, inc int) {
	p := nextPrime(uint(n) + uint(seed)*7)
	if p%uint(n) == 0 {
		p = nextPrime(p + 1)
	}
	return 0, int(p)
}

func isPrime(candidate uint) bool {
	if candidate < 2 {
		return false
	}
	if candidate%2 == 0 {
		return candidate == 2
	}
	for div := uint(3); div*div <= candidate; div += 2 {
		if candidate%div == 0 {
			return false
		}
	}
	return true
}

func nextPrime(seed uint) uint {
	seed |= 1
	for !isPrime(seed) {
		seed += 2
	}
	return seed
}
