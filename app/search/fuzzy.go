package search

// Field weights and the match threshold of fuzzy mode. A field score is the
// fraction of pattern characters that had to be edited to find the query in
// the field; 0 is an exact substring.
const (
	weightTitle    = 0.4
	weightExcerpt  = 0.3
	weightContent  = 0.2
	weightTags     = 0.05
	weightCategory = 0.05

	threshold = 0.4
)

// fuzzy keeps documents where at least one field scores within threshold.
// The document score is the weighted mean of field scores, counting
// unmatched fields as 1, reported as 1 minus that mean.
func (idx *Index) fuzzy(query string) []hit {
	pattern := []rune(fold(query))

	var hits []hit
	for i, d := range idx.docs {
		fields := []struct {
			weight float64
			score  float64
		}{
			{weightTitle, fieldScore(pattern, d.Title)},
			{weightExcerpt, fieldScore(pattern, d.Excerpt)},
			{weightContent, fieldScore(pattern, d.Content)},
			{weightTags, listScore(pattern, d.Tags)},
			{weightCategory, listScore(pattern, d.Categories)},
		}

		matched := false
		var sum, weights float64
		for _, f := range fields {
			s := f.score
			if s <= threshold {
				matched = true
			} else {
				s = 1
			}
			sum += f.weight * s
			weights += f.weight
		}
		if matched {
			hits = append(hits, hit{doc: i, score: 1 - sum/weights})
		}
	}
	return hits
}

func fieldScore(pattern []rune, text string) float64 {
	if text == "" {
		return 1
	}
	return float64(substringDistance(pattern, []rune(fold(text)))) / float64(len(pattern))
}

func listScore(pattern []rune, items []string) float64 {
	best := 1.0
	for _, item := range items {
		if s := fieldScore(pattern, item); s < best {
			best = s
		}
	}
	return best
}

// substringDistance is the smallest edit distance between pattern and any
// substring of text (Sellers' algorithm).
func substringDistance(pattern, text []rune) int {
	m := len(pattern)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}
	best := m
	for _, c := range text {
		cur[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == c {
				cost = 0
			}
			cur[i] = min(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
		}
		if cur[m] < best {
			best = cur[m]
			if best == 0 {
				break
			}
		}
		prev, cur = cur, prev
	}
	return best
}
