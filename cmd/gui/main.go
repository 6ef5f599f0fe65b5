package main

import (
	"flag"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/logging"
	"github.com/nnaakkaaii/auto2048/internal/record"
	"github.com/nnaakkaaii/auto2048/internal/search"
	"github.com/nnaakkaaii/auto2048/internal/ui"
	"github.com/nnaakkaaii/auto2048/internal/usecase"
)

func main() {
	depth := flag.Int("depth", 3, "initial search depth")
	speed := flag.Float64("speed", 100, "automatic move interval (ms)")
	auto := flag.Bool("auto", false, "start in automatic mode")
	threads := flag.Int("threads", runtime.NumCPU(), "search worker threads")
	tableMB := flag.Int("table-mb", 64, "transposition table size (MiB)")
	evalName := flag.String("eval", "heuristic", "board evaluator: "+strings.Join(domain.EvaluatorNames, ", "))
	chance := flag.String("chance", "adversarial", "tile placement model: adversarial or expectation")
	maxTime := flag.Duration("max-time", 0, "time limit per move (0 = none)")
	seed := flag.Int64("seed", 0, "random seed (0 = current time)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if err := logging.Setup(os.Stderr, *logLevel); err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	evaluator, ok := domain.EvaluatorByName(*evalName)
	if !ok {
		log.Fatal().Str("eval", *evalName).Msg("unknown-evaluator")
	}
	model, ok := search.ParseChanceModel(*chance)
	if !ok {
		log.Fatal().Str("chance", *chance).Msg("unknown-chance-model")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	game := domain.NewGame(rand.New(rand.NewSource(*seed)))
	engine := search.New(
		evaluator,
		search.DefaultIterativeOptions().
			WithTableByteSize(*tableMB<<20).
			WithMaxDepth(*depth).
			WithMaxTime(*maxTime).
			WithChanceModel(model),
		search.DefaultParallelOptions().WithNumThreads(*threads),
	)
	recorder := record.NewRecorder()
	rend := ui.NewRenderer()
	loop := usecase.NewTurnLoop(game, engine, rend, recorder)

	settings := usecase.DefaultSettings()
	settings.Automatic = *auto
	settings.Speed = *speed
	settings.Depth = *depth

	if err := ui.Run(ui.NewGameLoop(loop, rend, settings)); err != nil {
		log.Fatal().Err(err).Msg("ui-failed")
	}
	log.Info().
		Int("score", game.Score()).
		Int("moves", game.Moves()).
		Int("recorded", recorder.Len()).
		Msg("gui-finished")
}
