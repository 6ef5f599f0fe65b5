package main

import (
	"flag"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/logging"
	"github.com/nnaakkaaii/auto2048/internal/search"
	"github.com/nnaakkaaii/auto2048/internal/usecase"
)

func main() {
	depth := flag.Int("depth", 3, "search depth for the g command")
	threads := flag.Int("threads", runtime.NumCPU(), "search worker threads")
	seed := flag.Int64("seed", 0, "random seed (0 = current time)")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	if err := logging.Setup(os.Stderr, *logLevel); err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	engine := search.New(
		domain.NewHeuristicEvaluator(),
		search.DefaultIterativeOptions().WithMaxDepth(*depth),
		search.DefaultParallelOptions().WithNumThreads(*threads),
	)
	usecase.PlayGame(os.Stdin, os.Stdout, rng, engine, *depth)
}
