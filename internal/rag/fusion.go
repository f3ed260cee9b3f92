package rag

// Fuser merges ranked result lists from the two indexes into one. It is a
// strategy interface so callers never see the fusion policy change.
type Fuser interface {
	Fuse(vectorHits, keywordHits []string, k int) []string
}

// UnionFuser is the default strategy: set union deduplicated by text
// equality, truncated to k. Order is deterministic: vector hits first in
// rank order, then keyword hits not already present.
type UnionFuser struct{}

func (UnionFuser) Fuse(vectorHits, keywordHits []string, k int) []string {
	if k <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(vectorHits)+len(keywordHits))
	fused := make([]string, 0, k)

	for _, lists := range [][]string{vectorHits, keywordHits} {
		for _, text := range lists {
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			fused = append(fused, text)
			if len(fused) == k {
				return fused
			}
		}
	}
	return fused
}

// RRFFuser implements reciprocal-rank fusion. Not wired as the default; it
// exists so the policy can be swapped without touching callers.
type RRFFuser struct {
	// K dampens the contribution of lower ranks. 60 is the conventional value.
	K int
}

func (f RRFFuser) Fuse(vectorHits, keywordHits []string, k int) []string {
	if k <= 0 {
		return nil
	}
	damp := f.K
	if damp <= 0 {
		damp = 60
	}

	scores := make(map[string]float64)
	order := make([]string, 0, len(vectorHits)+len(keywordHits))
	for _, hits := range [][]string{vectorHits, keywordHits} {
		for rank, text := range hits {
			if _, ok := scores[text]; !ok {
				order = append(order, text)
			}
			scores[text] += 1.0 / float64(damp+rank+1)
		}
	}

	// Stable selection sort over first-seen order keeps ties deterministic.
	fused := make([]string, 0, k)
	for len(fused) < k && len(order) > 0 {
		best := 0
		for i := 1; i < len(order); i++ {
			if scores[order[i]] > scores[order[best]] {
				best = i
			}
		}
		fused = append(fused, order[best])
		order = append(order[:best], order[best+1:]...)
	}
	return fused
}
