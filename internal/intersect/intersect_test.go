package intersect

import "testing"

func TestInsertKeepsAscendingOrder(t *testing.T) {
	l := New()
	l.Insert(1, 5.0)
	l.Insert(2, -3.0)
	l.Insert(3, 1.0)

	want := []float64{-3.0, 1.0, 5.0}
	if l.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", l.Len(), len(want))
	}
	for i, d := range want {
		if got := l.At(i).Distance; got != d {
			t.Errorf("At(%d).Distance = %v, want %v", i, got, d)
		}
	}
}

func TestFind(t *testing.T) {
	l := New()
	l.Insert(7, 2.0)
	if !l.Find(7) {
		t.Error("Find(7) = false, want true")
	}
	if l.Find(8) {
		t.Error("Find(8) = true, want false")
	}
}

func TestMergeOverlappingDropsNearDuplicates(t *testing.T) {
	l := New()
	l.Insert(1, 0.0)
	l.Insert(2, 0.1)
	l.Insert(3, 5.0)

	if err := l.MergeOverlapping(0.2); err != nil {
		t.Fatalf("MergeOverlapping: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (0.0 and 0.1 should merge)", l.Len())
	}
	if l.At(0).Vertex != 1 {
		t.Errorf("survivor of merge = %d, want the earlier vertex 1", l.At(0).Vertex)
	}
	if l.At(1).Distance != 5.0 {
		t.Errorf("At(1).Distance = %v, want 5.0", l.At(1).Distance)
	}
}

func TestMergeOverlappingNonMonotonicFails(t *testing.T) {
	l := New()
	l.records = []Record{{Vertex: 1, Distance: 5.0}, {Vertex: 2, Distance: 0.0}}
	if err := l.MergeOverlapping(0.2); err == nil {
		t.Fatal("expected error for non-monotonic list")
	}
}

func TestReset(t *testing.T) {
	l := New()
	l.Insert(1, 1.0)
	l.Reset()
	if l.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", l.Len())
	}
}
