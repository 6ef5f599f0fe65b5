package ui

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/usecase"
)

const (
	tileSize   = 100
	tileMargin = 10
	boardPx    = domain.Size*tileSize + (domain.Size+1)*tileMargin
	headerH    = 60

	screenW = boardPx
	screenH = boardPx + headerH
)

var (
	colBackground = color.RGBA{0xbb, 0xad, 0xa0, 0xff}
	colEmpty      = color.RGBA{0xcd, 0xc1, 0xb4, 0xff}
	colDarkText   = color.RGBA{0x77, 0x6e, 0x65, 0xff}
	colLightText  = color.RGBA{0xf9, 0xf6, 0xf2, 0xff}
	colHeader     = color.RGBA{0xfa, 0xf8, 0xef, 0xff}

	tileColors = map[int]color.RGBA{
		2:    {0xee, 0xe4, 0xda, 0xff},
		4:    {0xed, 0xe0, 0xc8, 0xff},
		8:    {0xf2, 0xb1, 0x79, 0xff},
		16:   {0xf5, 0x95, 0x63, 0xff},
		32:   {0xf6, 0x7c, 0x5f, 0xff},
		64:   {0xf6, 0x5e, 0x3b, 0xff},
		128:  {0xed, 0xcf, 0x72, 0xff},
		256:  {0xed, 0xcc, 0x61, 0xff},
		512:  {0xed, 0xc8, 0x50, 0xff},
		1024: {0xed, 0xc5, 0x3f, 0xff},
		2048: {0xed, 0xc2, 0x2e, 0xff},
	}
	colSuper = color.RGBA{0x3c, 0x3a, 0x32, 0xff}
)

// Renderer は盤面の画像をキャッシュし、BoardUpdatedで描き直す
type Renderer struct {
	boardImg *ebiten.Image
	dirty    bool
}

func NewRenderer() *Renderer {
	return &Renderer{dirty: true}
}

// BoardUpdated は次のDrawで盤面を描き直させる
func (r *Renderer) BoardUpdated() {
	r.dirty = true
}

func (r *Renderer) draw(screen *ebiten.Image, game *domain.Game, settings usecase.Settings) {
	screen.Fill(colHeader)

	if r.boardImg == nil {
		r.boardImg = ebiten.NewImage(boardPx, boardPx)
	}
	if r.dirty {
		r.drawBoard(game.Board())
		r.dirty = false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, headerH)
	screen.DrawImage(r.boardImg, op)

	drawHeader(screen, game, settings)
}

func (r *Renderer) drawBoard(board domain.Board) {
	r.boardImg.Fill(colBackground)
	for row := 0; row < domain.Size; row++ {
		for col := 0; col < domain.Size; col++ {
			x := float32(tileMargin + col*(tileSize+tileMargin))
			y := float32(tileMargin + row*(tileSize+tileMargin))
			v := board.Get(row, col)
			vector.DrawFilledRect(r.boardImg, x, y, tileSize, tileSize, tileColor(v), false)
			if v == 0 {
				continue
			}

			label := strconv.Itoa(v)
			// basicfontは1文字7x13
			tx := int(x) + (tileSize-len(label)*7)/2
			ty := int(y) + tileSize/2 + 5
			fg := colDarkText
			if v > 4 {
				fg = colLightText
			}
			text.Draw(r.boardImg, label, basicfont.Face7x13, tx, ty, fg)
		}
	}
}

func tileColor(v int) color.Color {
	if v == 0 {
		return colEmpty
	}
	if c, ok := tileColors[v]; ok {
		return c
	}
	return colSuper
}

func drawHeader(screen *ebiten.Image, game *domain.Game, settings usecase.Settings) {
	state := "PLAYING"
	if game.IsGameOver() {
		state = "GAME OVER"
	}
	mode := "MANUAL"
	if settings.Automatic {
		mode = "AUTO"
	}

	lines := []string{
		fmt.Sprintf("Score | %d   Moves | %d   %s", game.Score(), game.Moves(), state),
		fmt.Sprintf("Mode | %s   Depth | %d   Speed | %.0fms", mode, settings.Depth, settings.Speed),
		"Arrows/WASD move  Space auto  =/- depth  ]/[ speed",
	}
	y := 16
	for _, s := range lines {
		text.Draw(screen, s, basicfont.Face7x13, tileMargin, y, colDarkText)
		y += 17
	}
}
