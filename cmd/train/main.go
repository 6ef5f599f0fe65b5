package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/logging"
	"github.com/nnaakkaaii/auto2048/internal/policy"
	"github.com/nnaakkaaii/auto2048/internal/record"
	"github.com/nnaakkaaii/auto2048/internal/search"
	"github.com/nnaakkaaii/auto2048/internal/usecase"
)

// 探索エンジンの自動プレイを記録し、その手を真似るポリシーを学習して対局させる
func main() {
	games := flag.Int("games", 3, "games played by the search engine to collect moves")
	depth := flag.Int("depth", 2, "search depth while collecting moves")
	maxMoves := flag.Int("max-moves", 300, "move limit per collected game (0 = none)")
	threads := flag.Int("threads", runtime.NumCPU(), "search worker threads")
	hidden := flag.String("hidden", "64,32", "hidden layer sizes")
	lr := flag.Float64("lr", 0.01, "learning rate")
	iters := flag.Int("iters", 20, "training iterations")
	seed := flag.Int64("seed", 0, "random seed (0 = current time)")
	logLevel := flag.String("log-level", "info", "log level")
	cpuProfile := flag.String("cpuprofile", "", "write a CPU profile into this directory")
	flag.Parse()

	if err := logging.Setup(os.Stderr, *logLevel); err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	layers, err := parseLayers(*hidden)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	config := policy.DefaultConfig()
	config.Hidden = layers
	config.LearningRate = *lr
	config.Iterations = *iters

	opts := trainOptions{
		games:    *games,
		depth:    *depth,
		maxMoves: *maxMoves,
		threads:  *threads,
		seed:     *seed,
		policy:   config,
	}
	err = run(opts, *cpuProfile)
	if errors.Is(err, policy.ErrNotEnoughData) {
		log.Fatal().Err(err).Msg("play more games to collect moves")
	} else if err != nil {
		log.Fatal().Err(err).Msg("train-failed")
	}
}

type trainOptions struct {
	games, depth, maxMoves, threads int
	seed                            int64
	policy                          policy.Config
}

// run はプロファイルを止めてから戻るので、呼び出し側でlog.Fatalしてよい
func run(opts trainOptions, cpuProfile string) error {
	if cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cpuProfile)).Stop()
	}
	rng := rand.New(rand.NewSource(opts.seed))

	engine := search.New(
		domain.NewHeuristicEvaluator(),
		search.DefaultIterativeOptions().WithMaxDepth(opts.depth),
		search.DefaultParallelOptions().WithNumThreads(opts.threads),
	)

	recorder := record.NewRecorder()
	collect := usecase.AutoPlayConfig{
		MaxDepth: opts.depth,
		MaxMoves: opts.maxMoves,
		Recorder: recorder,
	}
	for i := 0; i < opts.games; i++ {
		result := usecase.AutoPlay(io.Discard, rng, engine, collect)
		log.Info().Int("game", i+1).Int("score", result.Score).Int("recorded", recorder.Len()).Msg("collected")
	}

	p := policy.New(opts.policy)
	trained, err := p.Train(recorder.All())
	if err != nil {
		return fmt.Errorf("training on %d moves: %w", recorder.Len(), err)
	}
	fmt.Printf("Trained on %d moves, validation accuracy %.1f%%\n", trained.Train, trained.Accuracy*100)

	result := usecase.AutoPlay(os.Stdout, rng, p, usecase.AutoPlayConfig{Verbose: false})
	fmt.Printf("Policy game: score %d, moves %d, max tile %d\n", result.Score, result.Moves, result.MaxTile)
	return nil
}

func parseLayers(s string) ([]int, error) {
	var layers []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("hidden layer %q: must be a positive integer", f)
		}
		layers = append(layers, n)
	}
	return layers, nil
}
