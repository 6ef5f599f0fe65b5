package usecase

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nnaakkaaii/auto2048/internal/domain"
)

// AutoPlayConfig は自動プレイの設定
type AutoPlayConfig struct {
	MaxDepth int
	Delay    time.Duration
	// MaxMoves が0より大きければその手数で打ち切る
	MaxMoves int
	Verbose  bool
	// Recorder がnilでなければ適用した手を記録する
	Recorder Recorder
}

// DefaultAutoPlayConfig はデフォルトの設定を返す
func DefaultAutoPlayConfig() AutoPlayConfig {
	return AutoPlayConfig{
		MaxDepth: 3,
		Delay:    100 * time.Millisecond,
		Verbose:  true,
	}
}

// AutoPlayResult は自動プレイの結果
type AutoPlayResult struct {
	Score   int
	Moves   int
	MaxTile int
}

// AutoPlay はchooserに任せてゲームを最後までプレイする
// 毎フレームDelayだけ時間が進んだものとしてTurnLoopを回す
func AutoPlay(w io.Writer, rng *rand.Rand, chooser MoveChooser, config AutoPlayConfig) AutoPlayResult {
	game := domain.NewGame(rng)

	var renderer Renderer
	if config.Verbose {
		renderer = NewBoardPrinter(w, game)
	}
	loop := NewTurnLoop(game, chooser, renderer, config.Recorder)

	settings := Settings{
		Automatic: true,
		Speed:     float64(config.Delay) / float64(time.Millisecond),
		Depth:     config.MaxDepth,
	}
	frame := Frame{Delta: settings.Interval()}

	if config.Verbose {
		fmt.Fprintln(w, "=== 2048 AutoPlay ===")
		fmt.Fprintf(w, "Depth: %d\n\n", config.MaxDepth)
		fmt.Fprint(w, game.Board())
	}

	for !game.IsGameOver() {
		if config.MaxMoves > 0 && game.Moves() >= config.MaxMoves {
			break
		}

		dir, ok := loop.Tick(frame, settings)
		if !ok {
			// 動かせる手があるのにchooserが手を返さなかった
			log.Warn().Int("moves", game.Moves()).Msg("chooser-gave-up")
			break
		}
		if config.Verbose {
			fmt.Fprintf(w, "Move: %s\n\n", dir)
		}

		if config.Delay > 0 {
			time.Sleep(config.Delay)
		}
	}

	result := AutoPlayResult{
		Score:   game.Score(),
		Moves:   game.Moves(),
		MaxTile: game.Board().MaxTile(),
	}

	// 最終結果は常に表示
	fmt.Fprint(w, game.Board())
	if game.IsGameOver() {
		fmt.Fprintln(w, "=== Game Over ===")
	} else {
		fmt.Fprintln(w, "=== Stopped ===")
	}
	fmt.Fprintf(w, "Final Score: %d\n", result.Score)
	fmt.Fprintf(w, "Total Moves: %d\n", result.Moves)
	fmt.Fprintf(w, "Max Tile: %d\n", result.MaxTile)

	log.Info().
		Int("score", result.Score).
		Int("moves", result.Moves).
		Int("max-tile", result.MaxTile).
		Msg("autoplay-finished")
	return result
}
