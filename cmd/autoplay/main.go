package main

import (
	"flag"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/logging"
	"github.com/nnaakkaaii/auto2048/internal/search"
	"github.com/nnaakkaaii/auto2048/internal/usecase"
)

func main() {
	depth := flag.Int("depth", 3, "search depth")
	delay := flag.Int("delay", 100, "delay between moves (ms)")
	threads := flag.Int("threads", runtime.NumCPU(), "search worker threads")
	tableMB := flag.Int("table-mb", 16, "transposition table size (MiB)")
	evalName := flag.String("eval", "heuristic", "board evaluator: "+strings.Join(domain.EvaluatorNames, ", "))
	chance := flag.String("chance", "adversarial", "tile placement model: adversarial or expectation")
	maxTime := flag.Duration("max-time", 0, "time limit per move (0 = none)")
	maxMoves := flag.Int("max-moves", 0, "stop after this many moves (0 = play to the end)")
	seed := flag.Int64("seed", 0, "random seed (0 = current time)")
	quiet := flag.Bool("quiet", false, "suppress board output")
	logLevel := flag.String("log-level", "info", "log level")
	cpuProfile := flag.String("cpuprofile", "", "write a CPU profile into this directory")
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
	rng := rand.New(rand.NewSource(*seed))

	engine := search.New(
		evaluator,
		search.DefaultIterativeOptions().
			WithTableByteSize(*tableMB<<20).
			WithMaxDepth(*depth).
			WithMaxTime(*maxTime).
			WithChanceModel(model),
		search.DefaultParallelOptions().WithNumThreads(*threads),
	)

	config := usecase.DefaultAutoPlayConfig()
	config.MaxDepth = *depth
	config.Delay = time.Duration(*delay) * time.Millisecond
	config.MaxMoves = *maxMoves
	config.Verbose = !*quiet

	// log.Fatalはdeferを実行しないので、失敗しうる設定の検証が済んでから計測を始める
	if *cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile)).Stop()
	}
	log.Info().Int64("seed", *seed).Int("depth", *depth).Str("chance", model.String()).Msg("autoplay-starting")
	usecase.AutoPlay(os.Stdout, rng, engine, config)
}
