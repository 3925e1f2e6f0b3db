package domain

import "sort"

// FusionCap bounds the fused source list regardless of the requested
// MaxResults.
const FusionCap = 5

// FuseSources merges candidates from all retrieval origins, applies the
// origin weight to each raw score, and returns the top candidates ordered
// by final score descending. The sort is stable so equal scores keep their
// original relative order.
func FuseSources(candidates []SourceCandidate) []RankedSource {
	ranked := make([]RankedSource, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedSource{
			SourceCandidate: c,
			FinalScore:      c.RawScore * c.Origin.Weight(),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	if len(ranked) > FusionCap {
		ranked = ranked[:FusionCap]
	}
	return ranked
}

// RetrievalQuality computes the scalar quality gate for index candidates:
// the mean raw score damped by a count factor that saturates at three
// sources. An empty candidate set yields zero.
func RetrievalQuality(candidates []SourceCandidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candidates {
		sum += c.RawScore
	}
	avg := sum / float64(len(candidates))

	countFactor := float64(len(candidates)) / 3.0
	if countFactor > 1 {
		countFactor = 1
	}
	return avg * countFactor
}

// ConfidenceScore derives the final numeric confidence from the quality
// gate value and the fused source count. Always within [0, 1].
func ConfidenceScore(quality float64, sourceCount int) float64 {
	countFactor := float64(sourceCount) / 3.0
	if countFactor > 1 {
		countFactor = 1
	}
	return (quality + countFactor) / 2
}
