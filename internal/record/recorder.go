package record

import (
	"sync"

	"github.com/nnaakkaaii/auto2048/internal/domain"
)

// Pair は1手分の記録（スワイプ前の盤面と選んだ方向）
type Pair struct {
	Input  domain.Board
	Output domain.Direction
}

// Recorder はゲーム中の手をメモリ上に記録する
// 描画ループと学習側から同時に読み書きされてもよい
type Recorder struct {
	mu    sync.Mutex
	pairs []Pair
}

// NewRecorder は空のRecorderを生成する
func NewRecorder() *Recorder {
	return &Recorder{}
}

// AddMove は1手を末尾に追加する
func (r *Recorder) AddMove(p Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = append(r.pairs, p)
}

// All は記録のコピーを返す
func (r *Recorder) All() []Pair {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Pair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pairs)
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = nil
}
