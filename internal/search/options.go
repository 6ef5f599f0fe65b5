package search

import (
	"runtime"
	"time"
)

// ChanceModel はタイル配置の手番をどう評価するか
type ChanceModel int

const (
	// ChanceAdversarial は最悪の配置を選ぶ相手として扱う（αβ枝刈りが効く）
	ChanceAdversarial ChanceModel = iota
	// ChanceExpectation はスポーン確率で重み付けした期待値を取る
	ChanceExpectation
)

func (m ChanceModel) String() string {
	switch m {
	case ChanceAdversarial:
		return "adversarial"
	case ChanceExpectation:
		return "expectation"
	default:
		return "unknown"
	}
}

// ParseChanceModel は名前からChanceModelを返す
func ParseChanceModel(s string) (ChanceModel, bool) {
	switch s {
	case "adversarial", "min":
		return ChanceAdversarial, true
	case "expectation", "expectimax":
		return ChanceExpectation, true
	default:
		return ChanceAdversarial, false
	}
}

// MaxSearchDepth は探索できる最大の深さ（置換表は深さを8ビットで持つ）
const MaxSearchDepth = 64

// IterativeOptions は反復深化探索の設定
type IterativeOptions struct {
	TableByteSize int
	MaxDepth      int
	// MaxTime が0より大きければ、その時間で探索を打ち切る
	MaxTime time.Duration
	Chance  ChanceModel
}

// DefaultIterativeOptions はデフォルトの設定を返す
func DefaultIterativeOptions() IterativeOptions {
	return IterativeOptions{
		TableByteSize: 16 << 20,
		MaxDepth:      3,
		Chance:        ChanceAdversarial,
	}
}

func (o IterativeOptions) WithTableByteSize(n int) IterativeOptions {
	o.TableByteSize = n
	return o
}

func (o IterativeOptions) WithMaxDepth(depth int) IterativeOptions {
	o.MaxDepth = depth
	return o
}

func (o IterativeOptions) WithMaxTime(d time.Duration) IterativeOptions {
	o.MaxTime = d
	return o
}

func (o IterativeOptions) WithChanceModel(m ChanceModel) IterativeOptions {
	o.Chance = m
	return o
}

// ParallelOptions は並列探索の設定
type ParallelOptions struct {
	NumThreads int
}

// DefaultParallelOptions はCPU数のワーカーを使う
func DefaultParallelOptions() ParallelOptions {
	return ParallelOptions{NumThreads: runtime.NumCPU()}
}

func (o ParallelOptions) WithNumThreads(n int) ParallelOptions {
	o.NumThreads = n
	return o
}
