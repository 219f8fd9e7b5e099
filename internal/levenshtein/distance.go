// Package levenshtein computes edit distances between domain names.
package levenshtein

// Distance returns the number of single-rune insertions, deletions and
// substitutions needed to turn a into b. It keeps one row of the DP table.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			above := row[j]
			sub := diag
			if ra[i-1] != rb[j-1] {
				sub++
			}
			row[j] = min(sub, above+1, row[j-1]+1)
			diag = above
		}
	}
	return row[len(rb)]
}
