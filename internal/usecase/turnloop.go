package usecase

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/record"
)

// Key はフロントエンドから渡される入力キー
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyS
	KeyA
	KeyD
)

// keyBindings は方向ごとの割り当て。先に並んでいる方向が優先される
var keyBindings = []struct {
	dir  domain.Direction
	keys []Key
}{
	{domain.Up, []Key{KeyUp, KeyW}},
	{domain.Down, []Key{KeyDown, KeyS}},
	{domain.Left, []Key{KeyLeft, KeyA}},
	{domain.Right, []Key{KeyRight, KeyD}},
}

// ResolveInput はこのフレームで押されたキーから方向を1つ決める
// 複数の方向が押されていればUp, Down, Left, Rightの順で最初のもの
func ResolveInput(pressed []Key) (domain.Direction, bool) {
	for _, b := range keyBindings {
		for _, k := range b.keys {
			for _, p := range pressed {
				if p == k {
					return b.dir, true
				}
			}
		}
	}
	return 0, false
}

// Frame は1フレーム分の入力
type Frame struct {
	// Pressed はこのフレームで新たに押されたキー
	Pressed []Key
	// Delta は前のフレームからの経過時間
	Delta time.Duration
}

// Settings はフレームごとに読まれるプレイ設定
type Settings struct {
	Automatic bool `json:"automatic"`
	// Speed は自動プレイの間隔（ミリ秒）
	Speed float64 `json:"speed"`
	Depth int     `json:"depth"`
}

// DefaultSettings はデフォルトの設定を返す
func DefaultSettings() Settings {
	return Settings{
		Automatic: false,
		Speed:     100,
		Depth:     3,
	}
}

// 設定の調整範囲
const (
	MinDepth  = 1
	MaxDepth  = 8
	SpeedStep = 50.0
)

// ToggleAutomatic は自動プレイを切り替える
func (s *Settings) ToggleAutomatic() {
	s.Automatic = !s.Automatic
}

// ChangeDepth は探索の深さをMinDepthからMaxDepthの範囲で変える
func (s *Settings) ChangeDepth(delta int) {
	s.Depth = min(max(s.Depth+delta, MinDepth), MaxDepth)
}

// ChangeSpeed は自動プレイの間隔を変える（0未満にはならない）
func (s *Settings) ChangeSpeed(delta float64) {
	s.Speed = max(s.Speed+delta, 0)
}

// Interval はSpeedをDurationにしたもの
func (s Settings) Interval() time.Duration {
	return time.Duration(s.Speed * float64(time.Millisecond))
}

// MoveTimer は自動プレイのための経過時間を積算する
type MoveTimer struct {
	elapsed time.Duration
}

func (t *MoveTimer) Add(d time.Duration) {
	t.elapsed += d
}

func (t *MoveTimer) Elapsed() time.Duration {
	return t.elapsed
}

func (t *MoveTimer) Reset() {
	t.elapsed = 0
}

// Due は積算時間がinterval以上ならtrue
func (t *MoveTimer) Due(interval time.Duration) bool {
	return t.elapsed >= interval
}

// MoveChooser は盤面から次の手を選ぶ
type MoveChooser interface {
	SetMaxDepth(depth int)
	ChooseMove(board domain.Board) (domain.Move, bool)
}

// Renderer は盤面が変わったことを受け取る
type Renderer interface {
	BoardUpdated()
}

// Recorder は適用された手を受け取る
type Recorder interface {
	AddMove(p record.Pair)
}

type nopRenderer struct{}

func (nopRenderer) BoardUpdated() {}

type nopRecorder struct{}

func (nopRecorder) AddMove(record.Pair) {}

// TurnLoop はフレームごとに入力か探索から1手を決めて盤面に適用する
type TurnLoop struct {
	game     *domain.Game
	chooser  MoveChooser
	renderer Renderer
	recorder Recorder
	timer    MoveTimer
}

// NewTurnLoop はTurnLoopを生成する
// rendererとrecorderはnilでもよい
func NewTurnLoop(game *domain.Game, chooser MoveChooser, renderer Renderer, recorder Recorder) *TurnLoop {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &TurnLoop{
		game:     game,
		chooser:  chooser,
		renderer: renderer,
		recorder: recorder,
	}
}

// Game はこのループが進めているゲーム
func (l *TurnLoop) Game() *domain.Game {
	return l.game
}

// Board は現在の盤面のコピー
func (l *TurnLoop) Board() domain.Board {
	return l.game.Board()
}

// Timer は自動プレイのタイマー
func (l *TurnLoop) Timer() *MoveTimer {
	return &l.timer
}

// Tick は1フレームを処理する
// 盤面が変化した場合はその方向とtrueを返す。1フレームで適用する手は高々1つ
func (l *TurnLoop) Tick(f Frame, s Settings) (domain.Direction, bool) {
	dir, ok := ResolveInput(f.Pressed)
	source := "human"

	if s.Automatic {
		l.timer.Add(f.Delta)
		// 人の入力があったフレームでは探索しない
		if !ok && l.timer.Due(s.Interval()) {
			l.timer.Reset()
			dir, ok = l.autoMove(s.Depth)
			source = "auto"
		}
	}
	if !ok {
		return 0, false
	}

	before := l.game.Board()
	if !l.game.Swipe(dir) {
		log.Debug().Stringer("dir", dir).Str("source", source).Msg("swipe-ignored")
		return 0, false
	}
	if _, err := l.game.ComputerMove(); err != nil {
		// 盤面が動いた直後は必ず空きマスがある
		log.Error().Err(err).Msg("computer-move-failed")
	}
	l.renderer.BoardUpdated()
	l.recorder.AddMove(record.Pair{Input: before, Output: dir})

	log.Debug().
		Stringer("dir", dir).
		Str("source", source).
		Int("score", l.game.Score()).
		Int("moves", l.game.Moves()).
		Msg("move-applied")
	return dir, true
}

func (l *TurnLoop) autoMove(depth int) (domain.Direction, bool) {
	l.chooser.SetMaxDepth(depth)
	m, ok := l.chooser.ChooseMove(l.game.Board())
	if !ok {
		return 0, false
	}
	switch m := m.(type) {
	case domain.PlayerMove:
		return m.Dir, true
	default:
		panic(fmt.Sprintf("chooser returned %v on the player's turn", m))
	}
}
