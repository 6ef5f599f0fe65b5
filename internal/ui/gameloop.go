package ui

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"

	"github.com/nnaakkaaii/auto2048/internal/usecase"
)

const tps = 60

var keyMap = map[ebiten.Key]usecase.Key{
	ebiten.KeyArrowUp:    usecase.KeyUp,
	ebiten.KeyArrowDown:  usecase.KeyDown,
	ebiten.KeyArrowLeft:  usecase.KeyLeft,
	ebiten.KeyArrowRight: usecase.KeyRight,
	ebiten.KeyW:          usecase.KeyW,
	ebiten.KeyS:          usecase.KeyS,
	ebiten.KeyA:          usecase.KeyA,
	ebiten.KeyD:          usecase.KeyD,
}

// GameLoop はebitenのフレームごとにTurnLoopを1回進める
type GameLoop struct {
	loop     *usecase.TurnLoop
	rend     *Renderer
	settings usecase.Settings

	keys    []ebiten.Key
	pressed []usecase.Key
}

// NewGameLoop はrendをloopのRendererとして渡した上で呼ぶこと
func NewGameLoop(loop *usecase.TurnLoop, rend *Renderer, settings usecase.Settings) *GameLoop {
	return &GameLoop{
		loop:     loop,
		rend:     rend,
		settings: settings,
	}
}

func (gl *GameLoop) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	gl.keys = inpututil.AppendJustPressedKeys(gl.keys[:0])
	gl.pressed = gl.pressed[:0]
	for _, k := range gl.keys {
		switch k {
		case ebiten.KeySpace:
			gl.settings.ToggleAutomatic()
		case ebiten.KeyEqual:
			gl.settings.ChangeDepth(1)
		case ebiten.KeyMinus:
			gl.settings.ChangeDepth(-1)
		case ebiten.KeyBracketRight:
			gl.settings.ChangeSpeed(usecase.SpeedStep)
		case ebiten.KeyBracketLeft:
			gl.settings.ChangeSpeed(-usecase.SpeedStep)
		default:
			if uk, ok := keyMap[k]; ok {
				gl.pressed = append(gl.pressed, uk)
			}
		}
	}

	gl.loop.Tick(usecase.Frame{Pressed: gl.pressed, Delta: time.Second / tps}, gl.settings)
	return nil
}

func (gl *GameLoop) Draw(screen *ebiten.Image) {
	gl.rend.draw(screen, gl.loop.Game(), gl.settings)
}

func (gl *GameLoop) Layout(_, _ int) (int, int) { return screenW, screenH }

// Run はウィンドウを開いてゲームループを回す。Escで終了する
func Run(gl *GameLoop) error {
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("2048")
	ebiten.SetTPS(tps)

	log.Info().Int("tps", tps).Msg("ui-starting")
	if err := ebiten.RunGame(gl); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
