package search

import (
	"sync"
	"testing"
)

func TestTranspositionTableSizing(t *testing.T) {
	tests := []struct {
		name      string
		byteSize  int
		wantSlots int
	}{
		{"zero budget keeps one slot", 0, 1},
		{"exact power of two", 1024 * entrySize, 1024},
		{"rounds down", 1000 * entrySize, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTranspositionTable(tt.byteSize)
			if table.Slots() != tt.wantSlots {
				t.Errorf("expected %d slots, got %d", tt.wantSlots, table.Slots())
			}
			if table.ByteSize() != tt.wantSlots*entrySize {
				t.Errorf("expected %d bytes, got %d", tt.wantSlots*entrySize, table.ByteSize())
			}
		})
	}
}

func TestTranspositionTableProbe(t *testing.T) {
	table := NewTranspositionTable(1 << 16)
	table.Store(42, SidePlayer, 3, 12.5, Lower)

	tests := []struct {
		name  string
		key   uint64
		side  Side
		depth int
		ok    bool
	}{
		{"same depth", 42, SidePlayer, 3, true},
		{"shallower request", 42, SidePlayer, 1, true},
		{"deeper request", 42, SidePlayer, 4, false},
		{"other side", 42, SideChance, 3, false},
		{"other key", 43, SidePlayer, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, flag, ok := table.Probe(tt.key, tt.side, tt.depth)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && (score != 12.5 || flag != Lower) {
				t.Errorf("expected (12.5, Lower), got (%f, %d)", score, flag)
			}
		})
	}

	stats := table.Stats()
	if stats.Lookups != 5 || stats.Hits != 2 || stats.Stores != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTranspositionTableReplacement(t *testing.T) {
	table := NewTranspositionTable(1 << 16)

	table.Store(7, SideChance, 4, 1.0, Exact)
	// 同じ世代の浅い結果では上書きしない
	table.Store(7, SideChance, 2, 2.0, Exact)
	if score, _, _ := table.Probe(7, SideChance, 1); score != 1.0 {
		t.Errorf("shallower store replaced a deeper entry: got %f", score)
	}

	// 深い結果は上書きする
	table.Store(7, SideChance, 5, 3.0, Upper)
	if score, flag, _ := table.Probe(7, SideChance, 5); score != 3.0 || flag != Upper {
		t.Errorf("deeper store was ignored: got (%f, %d)", score, flag)
	}

	// 新しい世代なら浅くても上書きする
	table.NextGeneration()
	table.Store(7, SideChance, 1, 4.0, Exact)
	if score, _, _ := table.Probe(7, SideChance, 1); score != 4.0 {
		t.Errorf("new generation did not replace stale entry: got %f", score)
	}
}

func TestTranspositionTableClear(t *testing.T) {
	table := NewTranspositionTable(1 << 16)
	table.Store(1, SidePlayer, 2, 5.0, Exact)
	table.Clear()
	if _, _, ok := table.Probe(1, SidePlayer, 1); ok {
		t.Error("expected the table to be empty after Clear")
	}
}

func TestTranspositionTableConcurrent(t *testing.T) {
	table := NewTranspositionTable(1 << 12)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				key := uint64(i % 300)
				// スコアはキーから決まるので、どの書き込みが残っても一致する
				table.Store(key, SidePlayer, 1, float64(key)*2, Exact)
				if score, _, ok := table.Probe(key, SidePlayer, 1); ok && score != float64(key)*2 {
					t.Errorf("torn entry for key %d: %f", key, score)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestTranspositionTableDeepStoreStaysUsable(t *testing.T) {
	table := NewTranspositionTable(1 << 16)
	table.Store(7, SidePlayer, 200, 3.5, Exact)

	score, _, ok := table.Probe(7, SidePlayer, MaxSearchDepth)
	if !ok || score != 3.5 {
		t.Errorf("expected a hit with score 3.5, got %f, %v", score, ok)
	}
}
