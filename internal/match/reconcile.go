package match

// Status classifies a remote key after reconciliation.
type Status int

const (
	// Missing means no local candidate reached the threshold.
	Missing Status = iota
	// Matched means the best local candidate scored at or above the threshold.
	Matched
)

// String returns the lowercase status name.
func (s Status) String() string {
	if s == Matched {
		return "matched"
	}
	return "missing"
}

// MarshalJSON encodes the status as its string name.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Result records the outcome of reconciling a single remote key.
// Candidate holds the best-scoring local key even when the score fell
// below the threshold, so reports can show near misses; it is empty
// only when the local collection had no keys at all.
type Result struct {
	Query     string `json:"query"`
	Candidate string `json:"candidate,omitempty"`
	Score     int    `json:"score"`
	Status    Status `json:"status"`
}

// Reconcile classifies each remote key against the local keys, returning
// one Result per remote key in input order. A remote key is Matched when
// its best-scoring local candidate reaches threshold, Missing otherwise.
//
// Ties on the maximum score resolve to the first candidate in local
// order. Neither sequence is deduplicated, and a single local key may
// satisfy any number of remote keys.
func Reconcile(remote, local []string, threshold int) []Result {
	results := make([]Result, 0, len(remote))

	for _, query := range remote {
		best, bestScore := "", 0
		for i, candidate := range local {
			if score := Similarity(query, candidate); i == 0 || score > bestScore {
				best, bestScore = candidate, score
			}
		}

		status := Missing
		if len(local) > 0 && bestScore >= threshold {
			status = Matched
		}

		results = append(results, Result{
			Query:     query,
			Candidate: best,
			Score:     bestScore,
			Status:    status,
		})
	}

	return results
}

// MissingKeys extracts the queries classified Missing, preserving order.
func MissingKeys(results []Result) []string {
	var keys []string
	for _, r := range results {
		if r.Status == Missing {
			keys = append(keys, r.Query)
		}
	}
	return keys
}
