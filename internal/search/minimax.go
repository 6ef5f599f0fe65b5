package search

import (
	"context"
	"math"

	"github.com/nnaakkaaii/auto2048/internal/domain"
)

// プレイヤーの手番（max）とタイル配置の手番（chance）が交互に来る木を探索する
// depthは残りのプレイヤー手数。depth=1ならスワイプ→全配置→評価

// playerNode はプレイヤーの最善スワイプの値を返す
func (s *ParallelSearch) playerNode(ctx context.Context, bb domain.BitBoard, depth int, alpha, beta float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.nodes.Add(1)
	if depth <= 0 {
		return s.evaluator.Evaluate(bb.ToBoard()), nil
	}

	key := bb.Key()
	if score, flag, ok := s.table.Probe(key, SidePlayer, depth); ok {
		if v, cut := applyBound(score, flag, &alpha, &beta); cut {
			return v, nil
		}
	}
	alphaOrig, betaOrig := alpha, beta

	best := math.Inf(-1)
	moved := false
	for _, dir := range domain.Directions {
		child, _ := bb.Swipe(dir)
		if child == bb {
			continue
		}
		moved = true
		v, err := s.chanceNode(ctx, child, depth, alpha, beta)
		if err != nil {
			return 0, err
		}
		best = max(best, v)
		alpha = max(alpha, best)
		if alpha >= beta {
			break
		}
	}
	if !moved {
		// 動かせない局面はそのまま評価する
		best = s.evaluator.Evaluate(bb.ToBoard())
		s.table.Store(key, SidePlayer, depth, best, Exact)
		return best, nil
	}

	s.table.Store(key, SidePlayer, depth, best, boundFlag(best, alphaOrig, betaOrig))
	return best, nil
}

// chanceNode はスワイプ後の盤面にタイルが置かれる手番の値を返す
func (s *ParallelSearch) chanceNode(ctx context.Context, bb domain.BitBoard, depth int, alpha, beta float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.nodes.Add(1)

	empty := bb.EmptyCells()
	if len(empty) == 0 {
		return s.playerNode(ctx, bb, depth-1, alpha, beta)
	}

	key := bb.Key()
	if score, flag, ok := s.table.Probe(key, SideChance, depth); ok {
		if v, cut := applyBound(score, flag, &alpha, &beta); cut {
			return v, nil
		}
	}

	if s.opts.Chance == ChanceExpectation {
		v, err := s.expectation(ctx, bb, empty, depth)
		if err != nil {
			return 0, err
		}
		s.table.Store(key, SideChance, depth, v, Exact)
		return v, nil
	}

	alphaOrig, betaOrig := alpha, beta
	worst := math.Inf(1)
loop:
	for _, pos := range empty {
		for _, val := range domain.SpawnValues {
			v, err := s.playerNode(ctx, bb.Set(pos[0], pos[1], val), depth-1, alpha, beta)
			if err != nil {
				return 0, err
			}
			worst = min(worst, v)
			beta = min(beta, worst)
			if alpha >= beta {
				break loop
			}
		}
	}

	s.table.Store(key, SideChance, depth, worst, boundFlag(worst, alphaOrig, betaOrig))
	return worst, nil
}

// expectation は全空きマスへのスポーンを確率で重み付けした平均を取る
func (s *ParallelSearch) expectation(ctx context.Context, bb domain.BitBoard, empty [][2]int, depth int) (float64, error) {
	total := 0.0
	for _, pos := range empty {
		for _, val := range domain.SpawnValues {
			v, err := s.playerNode(ctx, bb.Set(pos[0], pos[1], val), depth-1, math.Inf(-1), math.Inf(1))
			if err != nil {
				return 0, err
			}
			total += domain.SpawnProbability(val) * v
		}
	}
	return total / float64(len(empty)), nil
}

// applyBound は置換表の値で窓を狭め、打ち切れるならその値を返す
func applyBound(score float64, flag Flag, alpha, beta *float64) (float64, bool) {
	switch flag {
	case Exact:
		return score, true
	case Lower:
		*alpha = max(*alpha, score)
	case Upper:
		*beta = min(*beta, score)
	}
	if *alpha >= *beta {
		return score, true
	}
	return 0, false
}

func boundFlag(score, alpha, beta float64) Flag {
	switch {
	case score <= alpha:
		return Upper
	case score >= beta:
		return Lower
	default:
		return Exact
	}
}
