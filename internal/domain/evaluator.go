package domain

import (
	"math"

	"github.com/samber/lo"
)

// Evaluator は盤面を評価してスコアを返すインターフェース
// 探索の葉で呼ばれるため、全ての盤面に対して有限値を返し副作用を持たないこと
type Evaluator interface {
	Evaluate(b Board) float64
}

// EvaluatorFunc は関数をEvaluatorとして扱うためのアダプタ
type EvaluatorFunc func(b Board) float64

func (f EvaluatorFunc) Evaluate(b Board) float64 { return f(b) }

// Term は重み付き和の1項
type Term struct {
	Weight    float64
	Evaluator Evaluator
}

// WeightedEvaluator は複数のEvaluatorを係数付きで組み合わせる
type WeightedEvaluator struct {
	terms []Term
}

// NewWeightedEvaluator は係数付きEvaluatorを生成する
// evaluatorsとweightsは同じ長さであること
func NewWeightedEvaluator(evaluators []Evaluator, weights []float64) *WeightedEvaluator {
	return &WeightedEvaluator{
		terms: lo.Map(evaluators, func(ev Evaluator, i int) Term {
			return Term{Weight: weights[i], Evaluator: ev}
		}),
	}
}

func (w *WeightedEvaluator) Evaluate(b Board) float64 {
	return lo.SumBy(w.terms, func(t Term) float64 {
		return t.Weight * t.Evaluator.Evaluate(b)
	})
}

// NewHeuristicEvaluator は探索で使う標準の評価関数を返す
// 空きマス、単調性、滑らかさ、最大タイル、マージ可能数、角ボーナスの重み付き和
func NewHeuristicEvaluator() *WeightedEvaluator {
	return &WeightedEvaluator{terms: []Term{
		{2.7, &EmptyCellsEvaluator{}},
		{1.0, &MonotonicityEvaluator{}},
		{0.1, &SmoothnessEvaluator{}},
		{1.0, &MaxTileEvaluator{}},
		{0.7, &MergeableEvaluator{}},
		{2.0, &CornerBonusEvaluator{}},
	}}
}

// EvaluatorNames はEvaluatorByNameが受け付ける名前
var EvaluatorNames = []string{"heuristic", "potential", "snake"}

// EvaluatorByName は名前から探索用のEvaluatorを返す
func EvaluatorByName(name string) (Evaluator, bool) {
	switch name {
	case "heuristic":
		return NewHeuristicEvaluator(), true
	case "potential":
		return &LargestTilePotentialEvaluator{}, true
	case "snake":
		return &SnakePatternEvaluator{}, true
	default:
		return nil, false
	}
}

// logTile はタイルの指数を返す（空きマスは0）
func logTile(v int) float64 {
	if v == 0 {
		return 0
	}
	return math.Log2(float64(v))
}

// eachAdjacent は右隣と下隣の組を1回ずつ訪問する
func eachAdjacent(b Board, visit func(a, c int)) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if c+1 < Size {
				visit(b.Get(r, c), b.Get(r, c+1))
			}
			if r+1 < Size {
				visit(b.Get(r, c), b.Get(r+1, c))
			}
		}
	}
}

// largest は最大タイルの値と位置を返す（同値なら走査順で最初のもの）
func largest(b Board) (value, row, col int) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if v := b.Get(r, c); v > value {
				value, row, col = v, r, c
			}
		}
	}
	return value, row, col
}

func isCorner(row, col int) bool {
	return (row == 0 || row == Size-1) && (col == 0 || col == Size-1)
}

// corner は基準にする角。fromBottom/fromRightで走査の向きを反転する
type corner struct {
	fromBottom, fromRight bool
}

var corners = []corner{{false, false}, {false, true}, {true, false}, {true, true}}

func (k corner) at(b Board, r, c int) int {
	if k.fromBottom {
		r = Size - 1 - r
	}
	if k.fromRight {
		c = Size - 1 - c
	}
	return b.Get(r, c)
}

// monotone は角から離れる向きに値が増えない隣接組の数を数える（最大24）
func (k corner) monotone(b Board) float64 {
	n := 0
	for i := 0; i < Size; i++ {
		for j := 0; j+1 < Size; j++ {
			if k.at(b, i, j) >= k.at(b, i, j+1) {
				n++
			}
			if k.at(b, j, i) >= k.at(b, j+1, i) {
				n++
			}
		}
	}
	return float64(n)
}

// EmptyCellsEvaluator は空きマス数で評価する
type EmptyCellsEvaluator struct{}

func (e *EmptyCellsEvaluator) Evaluate(b Board) float64 {
	return float64(Size*Size - b.Count())
}

// MonotonicityEvaluator は単調性で評価する（角から降順に並ぶほど高評価）
type MonotonicityEvaluator struct{}

func (e *MonotonicityEvaluator) Evaluate(b Board) float64 {
	return lo.Max(lo.Map(corners, func(k corner, _ int) float64 {
		return k.monotone(b)
	}))
}

// SmoothnessEvaluator は隣接タイルの指数差の合計を負にして返す
// 空きマスとの組は数えない
type SmoothnessEvaluator struct{}

func (e *SmoothnessEvaluator) Evaluate(b Board) float64 {
	penalty := 0.0
	eachAdjacent(b, func(a, c int) {
		if a != 0 && c != 0 {
			penalty += math.Abs(logTile(a) - logTile(c))
		}
	})
	return -penalty
}

// MergeableEvaluator は隣接する同じ値のペア数で評価する
type MergeableEvaluator struct{}

func (e *MergeableEvaluator) Evaluate(b Board) float64 {
	pairs := 0
	eachAdjacent(b, func(a, c int) {
		if a != 0 && a == c {
			pairs++
		}
	})
	return float64(pairs)
}

// CornerBonusEvaluator は最大タイルが角にあれば1、なければ0
type CornerBonusEvaluator struct{}

func (e *CornerBonusEvaluator) Evaluate(b Board) float64 {
	_, r, c := largest(b)
	return lo.Ternary(isCorner(r, c), 1.0, 0.0)
}

// MaxTileEvaluator は最大タイルの指数で評価する
type MaxTileEvaluator struct{}

func (e *MaxTileEvaluator) Evaluate(b Board) float64 {
	return logTile(b.MaxTile())
}

// snakeTables は左上から蛇状に降順となる重みの回転・反転8通り
var snakeTables = func() [][Size][Size]float64 {
	base := [Size][Size]float64{
		{15, 14, 13, 12},
		{8, 9, 10, 11},
		{7, 6, 5, 4},
		{0, 1, 2, 3},
	}
	var tables [][Size][Size]float64
	w := base
	for i := 0; i < 4; i++ {
		var rotated, mirrored [Size][Size]float64
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				rotated[c][Size-1-r] = w[r][c]
				mirrored[r][Size-1-c] = w[r][c]
			}
		}
		tables = append(tables, w, mirrored)
		w = rotated
	}
	return tables
}()

// SnakePatternEvaluator はスネークパターンに沿った配置を高評価
// 8通りの向きのうち最も合うものの重み付き指数和を返す
type SnakePatternEvaluator struct{}

func (e *SnakePatternEvaluator) Evaluate(b Board) float64 {
	return lo.Max(lo.Map(snakeTables, func(w [Size][Size]float64, _ int) float64 {
		score := 0.0
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				score += w[r][c] * logTile(b.Get(r, c))
			}
		}
		return score
	}))
}

// LargestTilePotentialEvaluator は単一の最大タイルを育てることに特化した評価
// 項は全て最大タイルの値に比例する
type LargestTilePotentialEvaluator struct{}

func (e *LargestTilePotentialEvaluator) Evaluate(b Board) float64 {
	top, row, col := largest(b)
	if top == 0 {
		return 0
	}
	v := float64(top)

	score := 10 * v
	if isCorner(row, col) {
		score += 5 * v
	}
	score += 0.1 * v * float64(Size*Size-b.Count())

	// 最大未満で最も大きい値
	second := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if x := b.Get(r, c); x < top && x > second {
				second = x
			}
		}
	}
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nr, nc := row+d[0], col+d[1]
		if nr < 0 || nr >= Size || nc < 0 || nc >= Size {
			continue
		}
		switch n := b.Get(nr, nc); {
		case n == top:
			score += 20 * v
		case second > 0 && n == second:
			score += 2 * float64(second)
		}
	}

	// 最大タイルに最も近い角を基準にした単調性
	k := corner{fromBottom: row >= Size/2, fromRight: col >= Size/2}
	score += 0.5 * v * k.monotone(b) / 24
	return score
}
