package domain

import "testing"

func TestSimilarity_RangeAndMonotonicity(t *testing.T) {
	distances := []float64{0, 0.001, 0.5, 1, 2, 10, 1000}

	prev := 2.0
	for _, d := range distances {
		s := Similarity(d)
		if s <= 0 || s > 1 {
			t.Errorf("Similarity(%v) = %v, want in (0, 1]", d, s)
		}
		if s >= prev {
			t.Errorf("Similarity(%v) = %v, expected strictly less than %v", d, s, prev)
		}
		prev = s
	}

	if got := Similarity(0); got != 1.0 {
		t.Errorf("Similarity(0) = %v, want 1.0", got)
	}
}

func TestBestSimilarity_EmptyHits(t *testing.T) {
	if got := BestSimilarity(nil); got != 0.0 {
		t.Errorf("BestSimilarity(nil) = %v, want 0.0", got)
	}
}

func TestBestSimilarity_PicksClosest(t *testing.T) {
	hits := []Retrieved{
		{Chunk: Chunk{ID: "a"}, Distance: 1},
		{Chunk: Chunk{ID: "b"}, Distance: 0.25},
		{Chunk: Chunk{ID: "c"}, Distance: 4},
	}
	if got, want := BestSimilarity(hits), 0.8; got != want {
		t.Errorf("BestSimilarity = %v, want %v", got, want)
	}
}

func TestMeanSimilarity(t *testing.T) {
	hits := []Retrieved{
		{Distance: 0}, // similarity 1.0
		{Distance: 1}, // similarity 0.5
	}
	if got, want := MeanSimilarity(hits), 0.75; got != want {
		t.Errorf("MeanSimilarity = %v, want %v", got, want)
	}
	if got := MeanSimilarity(nil); got != 0.0 {
		t.Errorf("MeanSimilarity(nil) = %v, want 0.0", got)
	}
}
