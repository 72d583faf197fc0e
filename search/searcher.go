package search

import "sort"

// Searcher runs the rewrite -> optimize -> execute -> sort -> top-N
// pipeline against an Index (spec §4.10 "binds everything together").
type Searcher struct {
	ix  Index
	sim Similarity
}

func NewSearcher(ix Index) *Searcher {
	return &Searcher{ix: ix, sim: DefaultSimilarity{}}
}

// SetSimilarity overrides the scoring model (default DefaultSimilarity).
func (s *Searcher) SetSimilarity(sim Similarity) { s.sim = sim }

// Find executes q against the index and returns at most limit matches,
// sorted by descending score then ascending doc id (spec §4.9 scoring,
// §4.10 result ordering).
func (s *Searcher) Find(q Query, limit int) ([]Match, error) {
	rewritten, err := q.Rewrite(s.ix)
	if err != nil {
		return nil, err
	}
	optimized, err := rewritten.Optimize(s.ix)
	if err != nil {
		return nil, err
	}

	sumSq, err := optimized.sumSquaredWeight(s.ix, s.sim)
	if err != nil {
		return nil, err
	}
	queryNorm := s.sim.QueryNorm(sumSq)

	scores, _, err := optimized.execute(s.ix, s.sim, queryNorm)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(scores))
	for doc, score := range scores {
		matches = append(matches, Match{Doc: doc, Score: score})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Doc < matches[j].Doc
	})
	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
