package domain

import (
	"math/bits"
)

// maxExp は1マス4ビットで表せる最大の指数（32768）
// この値同士はマージしない
const maxExp = 15

// BitBoard は盤面を64ビットに詰めた表現
// マス(r, c)の指数（0=空, 1=2, ..., 15=32768）を下位から(r*4+c)*4ビット目に置く
// 探索ではコピーが安く、そのまま置換表のキーになる
type BitBoard uint64

// rowMove は1行（16ビット）を左右にスライドした結果
type rowMove struct {
	left, right           uint16
	leftScore, rightScore int32
}

// rowMoves は全65536通りの行に対するスライド結果
var rowMoves = func() *[1 << 16]rowMove {
	var t [1 << 16]rowMove
	for i := range t {
		row := uint16(i)
		l, ls := slideRow(row)
		r, rs := slideRow(reverseRow(row))
		t[i] = rowMove{left: l, right: reverseRow(r), leftScore: ls, rightScore: rs}
	}
	return &t
}()

// slideRow は指数で表した1行を左へ詰めてマージする
// 端から1回だけ走査し、マージで生まれたタイルは同じスワイプで再びマージしない
func slideRow(row uint16) (uint16, int32) {
	var out [Size]uint16
	n := 0
	merged := false
	var score int32
	for i := 0; i < Size; i++ {
		e := (row >> (4 * i)) & 0xF
		if e == 0 {
			continue
		}
		if n > 0 && !merged && out[n-1] == e && e < maxExp {
			out[n-1]++
			score += 1 << out[n-1]
			merged = true
			continue
		}
		out[n] = e
		n++
		merged = false
	}
	var res uint16
	for i, e := range out {
		res |= e << (4 * i)
	}
	return res, score
}

func reverseRow(row uint16) uint16 {
	return row<<12 | (row<<4)&0x0F00 | (row>>4)&0x00F0 | row>>12
}

// transpose は行と列を入れ替える
func (bb BitBoard) transpose() BitBoard {
	a1 := bb & 0xF0F00F0FF0F00F0F
	a2 := bb & 0x0000F0F00000F0F0
	a3 := bb & 0x0F0F00000F0F0000
	a := a1 | a2<<12 | a3>>12
	b1 := a & 0xFF00FF0000FF00FF
	b2 := a & 0x00FF00FF00000000
	b3 := a & 0x00000000FF00FF00
	return b1 | b2>>24 | b3<<24
}

// slideRows は4行それぞれを表引きでスライドする
func (bb BitBoard) slideRows(toRight bool) (BitBoard, int) {
	var out BitBoard
	score := 0
	for r := 0; r < Size; r++ {
		shift := uint(r * 16)
		m := &rowMoves[uint16(bb>>shift)]
		if toRight {
			out |= BitBoard(m.right) << shift
			score += int(m.rightScore)
		} else {
			out |= BitBoard(m.left) << shift
			score += int(m.leftScore)
		}
	}
	return out, score
}

// NewBitBoard は通常のBoardからBitBoardを生成
// 32768を超えるタイルは32768として扱う
func NewBitBoard(b Board) BitBoard {
	var bb BitBoard
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			bb = bb.Set(r, c, b.Get(r, c))
		}
	}
	return bb
}

// ToBoard はBitBoardを通常のBoardに変換
func (bb BitBoard) ToBoard() Board {
	var b Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			b.cells[r][c] = bb.Get(r, c)
		}
	}
	return b
}

// Key は置換表で使うキー
func (bb BitBoard) Key() uint64 {
	return uint64(bb)
}

func (bb BitBoard) exp(row, col int) uint {
	return uint(bb>>((row*Size+col)*4)) & 0xF
}

// Get はタイルの値を取得
func (bb BitBoard) Get(row, col int) int {
	if e := bb.exp(row, col); e != 0 {
		return 1 << e
	}
	return 0
}

// Set は(row, col)を値valueにした盤面を返す（0で空にする）
func (bb BitBoard) Set(row, col, value int) BitBoard {
	shift := (row*Size + col) * 4
	var e BitBoard
	if value > 0 {
		e = BitBoard(min(bits.TrailingZeros(uint(value)), maxExp))
	}
	return bb&^(0xF<<shift) | e<<shift
}

// Swipe は指定方向にスワイプした盤面とマージで得た点数を返す
func (bb BitBoard) Swipe(dir Direction) (BitBoard, int) {
	switch dir {
	case Left:
		return bb.slideRows(false)
	case Right:
		return bb.slideRows(true)
	case Up:
		next, score := bb.transpose().slideRows(false)
		return next.transpose(), score
	case Down:
		next, score := bb.transpose().slideRows(true)
		return next.transpose(), score
	default:
		return bb, 0
	}
}

// EmptyCells は空きマスの位置を行優先で返す
func (bb BitBoard) EmptyCells() [][2]int {
	cells := make([][2]int, 0, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if bb.exp(r, c) == 0 {
				cells = append(cells, [2]int{r, c})
			}
		}
	}
	return cells
}

// LegalSwipes は盤面が変化する方向をDirections順で返す
func (bb BitBoard) LegalSwipes() []Direction {
	legal := make([]Direction, 0, len(Directions))
	for _, dir := range Directions {
		if next, _ := bb.Swipe(dir); next != bb {
			legal = append(legal, dir)
		}
	}
	return legal
}

// IsGameOver はどの方向にも動かせないか判定
func (bb BitBoard) IsGameOver() bool {
	return len(bb.LegalSwipes()) == 0
}
