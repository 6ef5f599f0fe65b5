package record

import (
	"sync"
	"testing"

	"github.com/nnaakkaaii/auto2048/internal/domain"
)

func TestRecorderAddMove(t *testing.T) {
	r := NewRecorder()
	board := domain.NewBoardFromCells([4][4]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	r.AddMove(Pair{Input: board, Output: domain.Left})
	if r.Len() != 1 {
		t.Fatalf("expected 1 pair, got %d", r.Len())
	}

	pairs := r.All()
	if !pairs[0].Input.Equal(board) || pairs[0].Output != domain.Left {
		t.Errorf("unexpected pair: %+v", pairs[0])
	}

	// Allの戻り値を書き換えても記録は変わらない
	pairs[0].Output = domain.Right
	if r.All()[0].Output != domain.Left {
		t.Error("All returned a slice aliasing the log")
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("expected empty log after Clear, got %d", r.Len())
	}
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.AddMove(Pair{Input: domain.NewBoard(), Output: domain.Up})
				r.All()
			}
		}()
	}
	wg.Wait()

	if r.Len() != 400 {
		t.Errorf("expected 400 pairs, got %d", r.Len())
	}
}
