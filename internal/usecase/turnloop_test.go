package usecase

import (
	"math/rand"
	"testing"
	"time"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/record"
)

type fakeChooser struct {
	move   domain.Move
	ok     bool
	calls  int
	depths []int
}

func (c *fakeChooser) SetMaxDepth(depth int) {
	c.depths = append(c.depths, depth)
}

func (c *fakeChooser) ChooseMove(domain.Board) (domain.Move, bool) {
	c.calls++
	return c.move, c.ok
}

type countingRenderer struct {
	updates int
}

func (r *countingRenderer) BoardUpdated() {
	r.updates++
}

func newTestLoop(cells [4][4]int, chooser *fakeChooser) (*TurnLoop, *countingRenderer, *record.Recorder) {
	game := domain.NewGameFromBoard(domain.NewBoardFromCells(cells), rand.New(rand.NewSource(42)))
	renderer := &countingRenderer{}
	recorder := record.NewRecorder()
	return NewTurnLoop(game, chooser, renderer, recorder), renderer, recorder
}

func TestResolveInput(t *testing.T) {
	tests := []struct {
		name    string
		pressed []Key
		want    domain.Direction
		ok      bool
	}{
		{"nothing pressed", nil, 0, false},
		{"arrow", []Key{KeyDown}, domain.Down, true},
		{"alias", []Key{KeyA}, domain.Left, true},
		{"up wins over right", []Key{KeyRight, KeyUp}, domain.Up, true},
		{"down wins over left", []Key{KeyA, KeyS}, domain.Down, true},
		{"left wins over right", []Key{KeyD, KeyLeft}, domain.Left, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveInput(tt.pressed)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("ResolveInput(%v) = %s, %v; want %s, %v", tt.pressed, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMoveTimer(t *testing.T) {
	var timer MoveTimer
	timer.Add(400 * time.Millisecond)
	if timer.Due(500 * time.Millisecond) {
		t.Error("timer should not be due at 400ms")
	}
	timer.Add(100 * time.Millisecond)
	if !timer.Due(500 * time.Millisecond) {
		t.Error("timer should be due at exactly 500ms")
	}
	timer.Reset()
	if timer.Elapsed() != 0 {
		t.Errorf("expected 0 after reset, got %s", timer.Elapsed())
	}
}

func TestTickHumanMove(t *testing.T) {
	chooser := &fakeChooser{}
	loop, renderer, recorder := newTestLoop([4][4]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, chooser)
	before := loop.Board()

	dir, ok := loop.Tick(Frame{Pressed: []Key{KeyLeft}}, DefaultSettings())
	if !ok || dir != domain.Left {
		t.Fatalf("expected Left to be applied, got %s, %v", dir, ok)
	}

	board := loop.Board()
	if board.Get(0, 0) != 4 {
		t.Errorf("expected 4 at (0,0), got %d", board.Get(0, 0))
	}
	// マージで1枚になり、配置で1枚増える
	if board.Count() != 2 {
		t.Errorf("expected 2 tiles after the computer move, got %d\n%s", board.Count(), board)
	}
	if loop.Game().Score() != 4 {
		t.Errorf("expected score 4, got %d", loop.Game().Score())
	}
	if renderer.updates != 1 {
		t.Errorf("expected 1 render signal, got %d", renderer.updates)
	}

	pairs := recorder.All()
	if len(pairs) != 1 {
		t.Fatalf("expected 1 recorded pair, got %d", len(pairs))
	}
	if !pairs[0].Input.Equal(before) || pairs[0].Output != domain.Left {
		t.Errorf("expected the pre-move board and Left, got %+v", pairs[0])
	}
	if chooser.calls != 0 {
		t.Errorf("chooser should not be called in manual mode, got %d calls", chooser.calls)
	}
}

func TestTickNoChangeSkipsTurn(t *testing.T) {
	tests := []struct {
		name  string
		cells [4][4]int
		keys  []Key
	}{
		{
			name: "corner tile",
			cells: [4][4]int{
				{2, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			keys: []Key{KeyLeft, KeyUp},
		},
		{
			name: "full board without merges",
			cells: [4][4]int{
				{2, 4, 2, 4},
				{4, 2, 4, 2},
				{2, 4, 2, 4},
				{4, 2, 4, 2},
			},
			keys: []Key{KeyUp, KeyDown, KeyLeft, KeyRight, KeyA},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop, renderer, recorder := newTestLoop(tt.cells, &fakeChooser{})
			before := loop.Board()

			for _, key := range tt.keys {
				if _, ok := loop.Tick(Frame{Pressed: []Key{key}}, DefaultSettings()); ok {
					t.Errorf("key %d: expected the swipe to be skipped", key)
				}
			}

			if loop.Board() != before {
				t.Errorf("board changed on a skipped turn:\n%s", loop.Board())
			}
			if renderer.updates != 0 || recorder.Len() != 0 || loop.Game().Moves() != 0 {
				t.Errorf("skipped turn had side effects: renders=%d records=%d moves=%d",
					renderer.updates, recorder.Len(), loop.Game().Moves())
			}
		})
	}
}

func TestTickCadence(t *testing.T) {
	chooser := &fakeChooser{move: domain.PlayerMove{Dir: domain.Left}, ok: true}
	loop, _, _ := newTestLoop([4][4]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, chooser)
	settings := Settings{Automatic: true, Speed: 500, Depth: 4}

	if _, ok := loop.Tick(Frame{Delta: 400 * time.Millisecond}, settings); ok {
		t.Error("no move expected before the interval")
	}
	if chooser.calls != 0 {
		t.Fatalf("expected no chooser call at 400ms, got %d", chooser.calls)
	}

	dir, ok := loop.Tick(Frame{Delta: 100 * time.Millisecond}, settings)
	if !ok || dir != domain.Left {
		t.Fatalf("expected the chosen move at 500ms, got %s, %v", dir, ok)
	}
	if chooser.calls != 1 {
		t.Errorf("expected exactly 1 chooser call, got %d", chooser.calls)
	}
	if len(chooser.depths) != 1 || chooser.depths[0] != 4 {
		t.Errorf("expected depth 4 to be pushed before choosing, got %v", chooser.depths)
	}
	if loop.Timer().Elapsed() != 0 {
		t.Errorf("expected the timer to reset, got %s", loop.Timer().Elapsed())
	}

	loop.Tick(Frame{Delta: 100 * time.Millisecond}, settings)
	if chooser.calls != 1 {
		t.Errorf("expected no call right after reset, got %d", chooser.calls)
	}
}

func TestTickHumanPrecedence(t *testing.T) {
	chooser := &fakeChooser{move: domain.PlayerMove{Dir: domain.Right}, ok: true}
	loop, renderer, _ := newTestLoop([4][4]int{
		{0, 2, 0, 4},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, chooser)
	settings := Settings{Automatic: true, Speed: 100, Depth: 2}

	dir, ok := loop.Tick(Frame{Pressed: []Key{KeyDown}, Delta: 200 * time.Millisecond}, settings)
	if !ok || dir != domain.Down {
		t.Fatalf("expected the human move, got %s, %v", dir, ok)
	}
	if chooser.calls != 0 {
		t.Errorf("chooser must not run on a tick with human input, got %d calls", chooser.calls)
	}
	if renderer.updates != 1 || loop.Game().Moves() != 1 {
		t.Errorf("expected exactly one move in the tick, renders=%d moves=%d", renderer.updates, loop.Game().Moves())
	}

	// タイマーは満了したままなので次のフレームで自動の手が出る
	loop.Tick(Frame{}, settings)
	if chooser.calls != 1 {
		t.Errorf("expected the pending automatic move on the next tick, got %d calls", chooser.calls)
	}
}

func TestTickChooserReturnsNothing(t *testing.T) {
	chooser := &fakeChooser{ok: false}
	loop, renderer, recorder := newTestLoop([4][4]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}, chooser)
	before := loop.Board()

	if _, ok := loop.Tick(Frame{Delta: time.Second}, Settings{Automatic: true, Speed: 10, Depth: 1}); ok {
		t.Error("expected no move")
	}
	if chooser.calls != 1 {
		t.Errorf("expected 1 chooser call, got %d", chooser.calls)
	}
	if loop.Board() != before || renderer.updates != 0 || recorder.Len() != 0 {
		t.Error("a tick without a move must not change anything")
	}
}

func TestTickPanicsOnComputerMove(t *testing.T) {
	chooser := &fakeChooser{move: domain.ComputerMove{Row: 0, Col: 0, Value: 2}, ok: true}
	loop, _, _ := newTestLoop([4][4]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, chooser)

	defer func() {
		if recover() == nil {
			t.Error("expected a panic when the chooser returns a computer move")
		}
	}()
	loop.Tick(Frame{Delta: time.Second}, Settings{Automatic: true, Speed: 10, Depth: 1})
}

func TestTickManualModeIgnoresTimer(t *testing.T) {
	chooser := &fakeChooser{move: domain.PlayerMove{Dir: domain.Left}, ok: true}
	loop, _, _ := newTestLoop([4][4]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, chooser)

	settings := DefaultSettings()
	for i := 0; i < 10; i++ {
		loop.Tick(Frame{Delta: time.Second}, settings)
	}
	if chooser.calls != 0 {
		t.Errorf("chooser called %d times in manual mode", chooser.calls)
	}
	if loop.Timer().Elapsed() != 0 {
		t.Errorf("timer advanced in manual mode: %s", loop.Timer().Elapsed())
	}
}

func TestSettingsAdjust(t *testing.T) {
	s := DefaultSettings()

	s.ToggleAutomatic()
	if !s.Automatic {
		t.Error("expected automatic mode after toggle")
	}

	tests := []struct {
		name  string
		delta int
		want  int
	}{
		{"deeper", 1, 4},
		{"clamped at max", 100, MaxDepth},
		{"clamped at min", -100, MinDepth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.ChangeDepth(tt.delta)
			if s.Depth != tt.want {
				t.Errorf("expected depth %d, got %d", tt.want, s.Depth)
			}
		})
	}

	s.Speed = 100
	s.ChangeSpeed(SpeedStep)
	if s.Speed != 150 {
		t.Errorf("expected speed 150, got %f", s.Speed)
	}
	s.ChangeSpeed(-1000)
	if s.Speed != 0 || s.Interval() != 0 {
		t.Errorf("expected speed to stop at 0, got %f", s.Speed)
	}
}
