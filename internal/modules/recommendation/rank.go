package recommendation

import (
	"sort"
	"strings"
)

// DefaultTopN is how many ranked candidates are shown
const DefaultTopN = 12

// DefaultAxisWeights weights every axis equally
var DefaultAxisWeights = [5]float64{3, 3, 3, 3, 3}

// Scored is a candidate with its preference score
type Scored struct {
	Candidate
	Score float64 `json:"score"`
}

// Filter returns candidates whose ticker, name or any tag contains the
// query, case-insensitively. An empty query returns the whole catalogue.
func Filter(query string) []Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Candidate(nil), Catalogue...)
	}

	out := []Candidate{}
	for _, c := range Catalogue {
		if matches(c, q) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c Candidate, q string) bool {
	if strings.Contains(strings.ToLower(c.Ticker), q) || strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Rank scores every candidate as the dot product of its profile with the
// axis weights and returns the top n, highest first. Equal scores keep
// catalogue order. n <= 0 means DefaultTopN.
func Rank(weights [5]float64, n int) []Scored {
	if n <= 0 {
		n = DefaultTopN
	}

	scored := make([]Scored, len(Catalogue))
	for i, c := range Catalogue {
		var s float64
		for axis, v := range c.Profile {
			s += float64(v) * weights[axis]
		}
		scored[i] = Scored{Candidate: c, Score: s}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if n < len(scored) {
		scored = scored[:n]
	}
	return scored
}
