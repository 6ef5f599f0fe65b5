package search

import (
	"context"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/nnaakkaaii/auto2048/internal/domain"
)

// ParallelSearch は反復深化と並列ワーカーで最善のスワイプを探す
// 置換表はセッション中の呼び出しをまたいで再利用される
// ChooseMoveとSetMaxDepthは同じゴルーチンから呼ぶこと
type ParallelSearch struct {
	evaluator domain.Evaluator
	opts      IterativeOptions
	threads   int
	table     *TranspositionTable

	nodes      atomic.Uint64
	rootScores map[domain.Direction]float64
	lastDepth  int
}

// rootResult はルートの1手の探索結果
type rootResult struct {
	dir   domain.Direction
	score float64
}

// New は置換表とワーカー数を固定してParallelSearchを生成する
func New(evaluator domain.Evaluator, opts IterativeOptions, popts ParallelOptions) *ParallelSearch {
	threads := popts.NumThreads
	if threads < 1 {
		threads = 1
	}
	s := &ParallelSearch{
		evaluator: evaluator,
		opts:      opts,
		threads:   threads,
		table:     NewTranspositionTable(opts.TableByteSize),
	}
	log.Debug().
		Int("threads", threads).
		Int("table-slots", s.table.Slots()).
		Int("table-bytes", s.table.ByteSize()).
		Str("chance", opts.Chance.String()).
		Msg("parallel-search-created")
	return s
}

// SetMaxDepth は次回以降の探索の深さを変える
// 浅くする場合は置換表を捨て、深い探索の結果が浅い探索の答えにならないようにする
func (s *ParallelSearch) SetMaxDepth(depth int) {
	if clampDepth(depth) < s.MaxDepth() {
		s.table.Clear()
	}
	s.opts.MaxDepth = depth
}

// MaxDepth は現在の最大深さ（1からMaxSearchDepthの範囲に丸める）
func (s *ParallelSearch) MaxDepth() int {
	return clampDepth(s.opts.MaxDepth)
}

func clampDepth(depth int) int {
	return min(max(depth, 1), MaxSearchDepth)
}

// Threads はワーカー数
func (s *ParallelSearch) Threads() int {
	return s.threads
}

// Table は共有置換表
func (s *ParallelSearch) Table() *TranspositionTable {
	return s.table
}

// ChooseMove は盤面に対する最善の手を返す
// 動かせる方向がなければ (nil, false)
func (s *ParallelSearch) ChooseMove(board domain.Board) (domain.Move, bool) {
	return s.ChooseMoveContext(context.Background(), board)
}

// ChooseMoveContext はctxかMaxTimeで打ち切れるChooseMove
// 打ち切られた場合は最後に完了した深さの最善手を返す
func (s *ParallelSearch) ChooseMoveContext(ctx context.Context, board domain.Board) (domain.Move, bool) {
	root := domain.NewBitBoard(board)
	legal := board.LegalSwipes()
	s.rootScores = nil
	s.lastDepth = 0
	s.nodes.Store(0)
	if len(legal) == 0 {
		log.Debug().Msg("no-legal-move")
		return nil, false
	}
	if len(legal) == 1 {
		return s.forced(board, legal[0]), true
	}
	// 32768同士のマージはBitBoardでは動かない手になるので、探索せずに選ぶ
	for _, dir := range legal {
		if next, _ := root.Swipe(dir); next == root {
			log.Debug().Stringer("move", dir).Msg("unrepresentable-merge")
			return s.forced(board, dir), true
		}
	}

	if s.opts.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.MaxTime)
		defer cancel()
	}

	tstart := time.Now()
	s.table.NextGeneration()
	before := s.table.Stats()

	order := legal
	best := legal[0]
	maxDepth := s.MaxDepth()
	for depth := 1; depth <= maxDepth; depth++ {
		results, err := s.searchRoot(ctx, root, order, depth)
		if err != nil {
			log.Debug().Err(err).Int("depth", depth).Msg("iteration-interrupted")
			break
		}
		// 大きい順、同点はDirections順
		slices.SortStableFunc(results, func(a, b rootResult) int {
			switch {
			case a.score > b.score:
				return -1
			case a.score < b.score:
				return 1
			default:
				return int(a.dir) - int(b.dir)
			}
		})
		order = lo.Map(results, func(r rootResult, _ int) domain.Direction { return r.dir })
		best = order[0]
		s.rootScores = lo.Associate(results, func(r rootResult) (domain.Direction, float64) {
			return r.dir, r.score
		})
		s.lastDepth = depth
		log.Debug().Int("depth", depth).Stringer("best", best).Float64("score", results[0].score).Msg("deepening-iteratively")
	}

	after := s.table.Stats()
	log.Debug().
		Int("depth", s.lastDepth).
		Stringer("move", best).
		Uint64("nodes", s.nodes.Load()).
		Uint64("ttable-lookups", after.Lookups-before.Lookups).
		Uint64("ttable-hits", after.Hits-before.Hits).
		Uint64("ttable-stores", after.Stores-before.Stores).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("choose-move-returning")

	return domain.PlayerMove{Dir: best}, true
}

// forced は探索せずにdirを返す。スコアはスワイプ後の盤面の評価値
func (s *ParallelSearch) forced(board domain.Board, dir domain.Direction) domain.Move {
	swiped, _ := board.SwipeWithoutSpawn(dir)
	s.rootScores = map[domain.Direction]float64{dir: s.evaluator.Evaluate(swiped)}
	return domain.PlayerMove{Dir: dir}
}

// RootScores は直近の探索で完了した最深の反復での各方向のスコア
func (s *ParallelSearch) RootScores() map[domain.Direction]float64 {
	return s.rootScores
}

// CompletedDepth は直近の探索で完了した最深の反復の深さ
func (s *ParallelSearch) CompletedDepth() int {
	return s.lastDepth
}

// Nodes は直近の探索で展開したノード数
func (s *ParallelSearch) Nodes() uint64 {
	return s.nodes.Load()
}

// Stats は探索の統計
type Stats struct {
	Depth int
	Nodes uint64
	Table TableStats
}

// Stats は直近の探索の深さとノード数、置換表の累計統計を返す
func (s *ParallelSearch) Stats() Stats {
	return Stats{
		Depth: s.lastDepth,
		Nodes: s.nodes.Load(),
		Table: s.table.Stats(),
	}
}

// searchRoot はルートの各手をワーカーに振り分けて深さdepthで探索する
func (s *ParallelSearch) searchRoot(ctx context.Context, root domain.BitBoard, order []domain.Direction, depth int) ([]rootResult, error) {
	results := make([]rootResult, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.threads)

	for i, dir := range order {
		i, dir := i, dir
		g.Go(func() error {
			child, _ := root.Swipe(dir)
			score, err := s.chanceNode(gctx, child, depth, math.Inf(-1), math.Inf(1))
			if err != nil {
				return err
			}
			results[i] = rootResult{dir: dir, score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
