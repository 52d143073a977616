package modelselection

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestKFold_Split(t *testing.T) {
	tests := []struct {
		name     string
		nSamples int
		nSplits  int
		shuffle  bool
	}{
		{name: "even split", nSamples: 12, nSplits: 3, shuffle: false},
		{name: "uneven split", nSamples: 10, nSplits: 3, shuffle: false},
		{name: "shuffled", nSamples: 20, nSplits: 4, shuffle: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X := mat.NewDense(tt.nSamples, 1, nil)
			kf := NewKFold(tt.nSplits, tt.shuffle, 42)
			folds := kf.Split(X, nil)

			if len(folds) != tt.nSplits {
				t.Fatalf("got %d folds, want %d", len(folds), tt.nSplits)
			}

			seen := make(map[int]int)
			for _, fold := range folds {
				for _, idx := range fold.TestIndices {
					seen[idx]++
				}
				if len(fold.TrainIndices)+len(fold.TestIndices) != tt.nSamples {
					t.Errorf("train+test = %d, want %d",
						len(fold.TrainIndices)+len(fold.TestIndices), tt.nSamples)
				}
			}
			if len(seen) != tt.nSamples {
				t.Errorf("test sets cover %d samples, want %d", len(seen), tt.nSamples)
			}
			for idx, count := range seen {
				if count != 1 {
					t.Errorf("sample %d appears in %d test sets, want 1", idx, count)
				}
			}

			// Fold sizes differ by at most one.
			min, max := tt.nSamples, 0
			for _, fold := range folds {
				if n := len(fold.TestIndices); n < min {
					min = n
				} else if n > max {
					max = n
				}
			}
			if max-min > 1 {
				t.Errorf("fold size spread %d-%d exceeds 1", min, max)
			}
		})
	}
}

func TestKFold_ShuffleDeterministic(t *testing.T) {
	X := mat.NewDense(50, 1, nil)

	a := NewKFold(5, true, 7).Split(X, nil)
	b := NewKFold(5, true, 7).Split(X, nil)

	for i := range a {
		if len(a[i].TestIndices) != len(b[i].TestIndices) {
			t.Fatalf("fold %d sizes differ", i)
		}
		for j := range a[i].TestIndices {
			if a[i].TestIndices[j] != b[i].TestIndices[j] {
				t.Fatalf("fold %d index %d differs: %d vs %d",
					i, j, a[i].TestIndices[j], b[i].TestIndices[j])
			}
		}
	}
}

func TestStratifiedKFold_PreservesClassRatio(t *testing.T) {
	// 30 negatives then 15 positives.
	n := 45
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 30; i < n; i++ {
		y.Set(i, 0, 1)
	}

	skf := NewStratifiedKFold(3, true, 13)
	folds := skf.Split(X, y)

	for i, fold := range folds {
		pos := 0
		for _, idx := range fold.TestIndices {
			if y.At(idx, 0) == 1 {
				pos++
			}
		}
		if pos != 5 {
			t.Errorf("fold %d has %d positives in test set, want 5", i, pos)
		}
		if len(fold.TestIndices) != 15 {
			t.Errorf("fold %d test size = %d, want 15", i, len(fold.TestIndices))
		}
	}
}

func TestSubset(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 1,
		2, 3,
		4, 5,
		6, 7,
	})
	y := mat.NewDense(4, 1, []float64{10, 11, 12, 13})

	xSub, ySub := Subset(X, y, []int{3, 1})

	want := mat.NewDense(2, 2, []float64{2, 3, 6, 7})
	if !mat.Equal(xSub, want) {
		t.Errorf("Subset X = %v, want %v", mat.Formatted(xSub), mat.Formatted(want))
	}
	if ySub.At(0, 0) != 11 || ySub.At(1, 0) != 13 {
		t.Errorf("Subset y = %v", mat.Formatted(ySub))
	}
}
