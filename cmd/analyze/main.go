package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/logging"
	"github.com/nnaakkaaii/auto2048/internal/search"
)

func main() {
	depth := flag.Int("depth", 5, "initial search depth")
	threads := flag.Int("threads", runtime.NumCPU(), "search worker threads")
	tableMB := flag.Int("table-mb", 64, "transposition table size (MiB)")
	evalName := flag.String("eval", "heuristic", "board evaluator: "+strings.Join(domain.EvaluatorNames, ", "))
	chance := flag.String("chance", "adversarial", "tile placement model: adversarial or expectation")
	logLevel := flag.String("log-level", "warn", "log level")
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

	a := &analyzer{
		in:  bufio.NewScanner(os.Stdin),
		out: os.Stdout,
		engine: search.New(
			evaluator,
			search.DefaultIterativeOptions().
				WithTableByteSize(*tableMB<<20).
				WithMaxDepth(*depth).
				WithChanceModel(model),
			search.DefaultParallelOptions().WithNumThreads(*threads),
		),
	}
	a.run()
}

const maxAnalyzeDepth = 10

// analyzer は盤面を入力として受け取り、各スワイプの評価値を表示する対話ツール
type analyzer struct {
	in     *bufio.Scanner
	out    io.Writer
	engine *search.ParallelSearch
}

func (a *analyzer) prompt(msg string) (string, bool) {
	fmt.Fprint(a.out, msg)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *analyzer) run() {
	fmt.Fprintln(a.out, "=== 2048 Interactive Analyzer ===")
	fmt.Fprintln(a.out, "Enter 16 numbers row by row (0 for empty), e.g. 0 0 0 0 0 0 0 0 0 0 0 0 0 0 2 2")
	for {
		line, ok := a.prompt("board> ")
		if !ok || line == "quit" || line == "q" {
			return
		}
		board, err := domain.ParseBoard(line)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			continue
		}
		if !a.explore(board) {
			return
		}
	}
}

// explore は1つの盤面から手を進めながら解析する
// 終了が選ばれたらfalseを返す
func (a *analyzer) explore(board domain.Board) bool {
	for {
		fmt.Fprintf(a.out, "\n%s", board)
		if board.IsGameOver() {
			fmt.Fprintln(a.out, "Game Over!")
			return true
		}

		m, ok := a.engine.ChooseMove(board)
		if !ok {
			fmt.Fprintln(a.out, "No valid moves available!")
			return true
		}
		best := m.(domain.PlayerMove).Dir
		a.report(best)

		cmd, ok := a.prompt("[a]pply best, [u/d/l/r] other move, [=N] depth, [n]ew board, [q]uit: ")
		if !ok {
			return false
		}
		switch {
		case cmd == "a":
			board = a.advance(board, best)
		case strings.HasPrefix(cmd, "="):
			a.setDepth(strings.TrimPrefix(cmd, "="))
		case cmd == "n":
			return true
		case cmd == "q":
			return false
		default:
			dir, ok := directionKeys[cmd]
			if !ok {
				fmt.Fprintln(a.out, "Unknown command")
				continue
			}
			board = a.advance(board, dir)
		}
	}
}

var directionKeys = map[string]domain.Direction{
	"u": domain.Up,
	"d": domain.Down,
	"l": domain.Left,
	"r": domain.Right,
}

func (a *analyzer) report(best domain.Direction) {
	stats := a.engine.Stats()
	fmt.Fprintf(a.out, "Best: %s (depth %d/%d, %d nodes, table %d/%d hits)\n",
		best, stats.Depth, a.engine.MaxDepth(), stats.Nodes, stats.Table.Hits, stats.Table.Lookups)
	scores := a.engine.RootScores()
	for _, dir := range domain.Directions {
		score, ok := scores[dir]
		if !ok {
			continue
		}
		mark := ""
		if dir == best {
			mark = "  <- best"
		}
		fmt.Fprintf(a.out, "  %-5s %12.2f%s\n", dir, score, mark)
	}
}

// advance はスワイプを適用し、実際に出現したタイルを入力してもらう
func (a *analyzer) advance(board domain.Board, dir domain.Direction) domain.Board {
	next := board
	if !next.Apply(domain.PlayerMove{Dir: dir}) {
		fmt.Fprintf(a.out, "%s does not change the board\n", dir)
		return board
	}
	fmt.Fprintf(a.out, "\nAfter %s:\n%s", dir, next)

	for {
		line, ok := a.prompt("new tile (row col value): ")
		if !ok {
			return board
		}
		cm, err := parsePlacement(line)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			continue
		}
		if !next.Apply(cm) {
			fmt.Fprintln(a.out, "Error: that cell is not empty")
			continue
		}
		return next
	}
}

func parsePlacement(line string) (domain.ComputerMove, error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return domain.ComputerMove{}, fmt.Errorf("want 3 numbers, got %d", len(parts))
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return domain.ComputerMove{}, err
		}
		v[i] = n
	}
	if v[0] < 0 || v[0] >= domain.Size || v[1] < 0 || v[1] >= domain.Size {
		return domain.ComputerMove{}, fmt.Errorf("position %d,%d is off the board", v[0], v[1])
	}
	if domain.SpawnProbability(v[2]) == 0 {
		return domain.ComputerMove{}, fmt.Errorf("value must be one of %v", domain.SpawnValues)
	}
	return domain.ComputerMove{Row: v[0], Col: v[1], Value: v[2]}, nil
}

func (a *analyzer) setDepth(s string) {
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > maxAnalyzeDepth {
		fmt.Fprintf(a.out, "Depth must be 1-%d\n", maxAnalyzeDepth)
		return
	}
	a.engine.SetMaxDepth(d)
}
