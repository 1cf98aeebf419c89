package domain

// Chunk is an immutable fragment of source-document text. Chunks are
// produced once at ingestion and replaced wholesale when a new document
// set is ingested.
type Chunk struct {
	ID     string
	Text   string
	Source string
}

// Retrieved is a single similarity hit: a chunk plus its raw index
// distance (lower = more similar).
type Retrieved struct {
	Chunk    Chunk
	Distance float64
}

// Similarity converts a non-negative index distance into a score in
// (0, 1], monotonically decreasing in distance.
func Similarity(distance float64) float64 {
	return 1 / (1 + distance)
}

// BestSimilarity returns the maximum similarity over the hits, or 0.0
// when there are none.
func BestSimilarity(hits []Retrieved) float64 {
	best := 0.0
	for _, h := range hits {
		if s := Similarity(h.Distance); s > best {
			best = s
		}
	}
	return best
}

// MeanSimilarity returns the average similarity over the hits, or 0.0
// when there are none.
func MeanSimilarity(hits []Retrieved) float64 {
	if len(hits) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range hits {
		sum += Similarity(h.Distance)
	}
	return sum / float64(len(hits))
}
