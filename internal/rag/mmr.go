package rag

import "math"

// maximalMarginalRelevance picks up to k of the candidate embeddings, trading
// similarity to the query against similarity to the ones already picked.
// lambda = 1 ranks by relevance only, lambda = 0 by diversity only.
// The returned indexes are in selection order.
func maximalMarginalRelevance(query []float32, embeddings [][]float32, k int, lambda float64) []int {
	if k > len(embeddings) {
		k = len(embeddings)
	}
	if k <= 0 {
		return nil
	}

	relevance := make([]float64, len(embeddings))
	for i, e := range embeddings {
		relevance[i] = cosine(query, e)
	}

	first := 0
	for i := range relevance {
		if relevance[i] > relevance[first] {
			first = i
		}
	}

	selected := []int{first}
	picked := make([]bool, len(embeddings))
	picked[first] = true

	for len(selected) < k {
		best, bestScore := -1, math.Inf(-1)
		for i := range embeddings {
			if picked[i] {
				continue
			}

			redundancy := math.Inf(-1)
			for _, j := range selected {
				redundancy = math.Max(redundancy, cosine(embeddings[i], embeddings[j]))
			}

			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				best, bestScore = i, score
			}
		}

		selected = append(selected, best)
		picked[best] = true
	}

	return selected
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
