// Package pattern implements the TNFS glob matcher used by OPENDIRX and the
// directory-pattern filter: '*' matches zero or more characters, '?'
// matches exactly one, matching is case-insensitive ASCII folding.
package pattern

// Match reports whether name matches pattern under TNFS glob rules
// (spec.md §4.3, §8 property 6). A nil pattern matches everything when
// passed to MatchOptional; Match itself treats an empty string pattern as
// matching only the empty string.
//
// The implementation is an iterative DP table, O(len(pattern)*len(name)),
// matching spec.md §9's preference for an iterative matcher over recursion
// for stack safety on long names.
func Match(pattern, name string) bool {
	p := []byte(pattern)
	n := []byte(name)
	lp, ln := len(p), len(n)

	// dp[i][j] = pattern[:i] matches name[:j]
	dp := make([][]bool, lp+1)
	for i := range dp {
		dp[i] = make([]bool, ln+1)
	}
	dp[0][0] = true
	for i := 1; i <= lp; i++ {
		if p[i-1] == '*' {
			dp[i][0] = dp[i-1][0]
		}
	}

	for i := 1; i <= lp; i++ {
		for j := 1; j <= ln; j++ {
			switch p[i-1] {
			case '*':
				dp[i][j] = dp[i-1][j] || dp[i][j-1]
			case '?':
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = dp[i-1][j-1] && foldEq(p[i-1], n[j-1])
			}
		}
	}
	return dp[lp][ln]
}

// MatchOptional applies Match, but a nil pattern pointer matches everything
// (spec.md §4.3: "a missing pattern (nil) is treated as match everything").
func MatchOptional(pattern *string, name string) bool {
	if pattern == nil {
		return true
	}
	return Match(*pattern, name)
}

func foldEq(a, b byte) bool {
	return lower(a) == lower(b)
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
