package usecase

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/nnaakkaaii/auto2048/internal/domain"
)

// BoardPrinter は盤面が変わるたびに盤面とスコアを書き出す
type BoardPrinter struct {
	w    io.Writer
	game *domain.Game
}

// NewBoardPrinter はgameを書き出すBoardPrinterを生成する
func NewBoardPrinter(w io.Writer, game *domain.Game) *BoardPrinter {
	return &BoardPrinter{w: w, game: game}
}

func (p *BoardPrinter) BoardUpdated() {
	p.Print()
}

// Print は現在の盤面とスコアを書き出す
func (p *BoardPrinter) Print() {
	fmt.Fprint(p.w, p.game.Board())
	fmt.Fprintf(p.w, "Score: %d, Moves: %d\n", p.game.Score(), p.game.Moves())
}

// PlayGame はCLIで2048ゲームを実行する
// gを入力するとchooserがdepthの深さで1手指す
func PlayGame(r io.Reader, w io.Writer, rng *rand.Rand, chooser MoveChooser, depth int) {
	game := domain.NewGame(rng)
	printer := NewBoardPrinter(w, game)
	loop := NewTurnLoop(game, chooser, printer, nil)
	reader := bufio.NewReader(r)

	fmt.Fprintln(w, "=== 2048 ===")
	fmt.Fprintln(w, "Controls: w=Up, s=Down, a=Left, d=Right, g=Let AI move, q=Quit")
	fmt.Fprintln(w)
	printer.Print()

	for {
		if game.IsGameOver() {
			fmt.Fprintln(w, "Game Over!")
			break
		}

		fmt.Fprint(w, "Move: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			break
		}

		input = strings.TrimSpace(strings.ToLower(input))
		if input == "q" {
			fmt.Fprintln(w, "Quit.")
			break
		}

		frame, settings, ok := parseCommand(input, depth)
		if !ok {
			fmt.Fprintln(w, "Invalid input. Use w/a/s/d, g or q to quit.")
			continue
		}

		fmt.Fprintln(w)
		if _, moved := loop.Tick(frame, settings); !moved {
			fmt.Fprintln(w, "Cannot move in that direction.")
		}
	}
}

// parseCommand は1行の入力を1フレーム分の入力に変換する
func parseCommand(input string, depth int) (Frame, Settings, bool) {
	settings := DefaultSettings()
	settings.Depth = depth

	switch input {
	case "w":
		return Frame{Pressed: []Key{KeyW}}, settings, true
	case "s":
		return Frame{Pressed: []Key{KeyS}}, settings, true
	case "a":
		return Frame{Pressed: []Key{KeyA}}, settings, true
	case "d":
		return Frame{Pressed: []Key{KeyD}}, settings, true
	case "g":
		// タイマーが必ず満了する自動フレーム
		settings.Automatic = true
		settings.Speed = 0
		return Frame{}, settings, true
	default:
		return Frame{}, settings, false
	}
}
