package domain

import "fmt"

// Move は探索とターン処理でやり取りする手
// PlayerMove（スワイプ）とComputerMove（タイル配置）の2種類だけを持つ
type Move interface {
	isMove()
	String() string
}

// PlayerMove はプレイヤーのスワイプ
type PlayerMove struct {
	Dir Direction
}

// ComputerMove はゲーム側のタイル配置（Valueは2か4）
type ComputerMove struct {
	Row, Col int
	Value    int
}

func (PlayerMove) isMove()   {}
func (ComputerMove) isMove() {}

func (m PlayerMove) String() string {
	return "Player(" + m.Dir.String() + ")"
}

func (m ComputerMove) String() string {
	return fmt.Sprintf("Computer(%d at %d,%d)", m.Value, m.Row, m.Col)
}

// Apply は手を盤面に適用し、盤面が変化したかを返す
// 埋まっているマスへの配置は適用しない
func (b *Board) Apply(m Move) bool {
	switch m := m.(type) {
	case PlayerMove:
		return b.Swipe(m.Dir)
	case ComputerMove:
		if b.cells[m.Row][m.Col] != 0 {
			return false
		}
		b.cells[m.Row][m.Col] = m.Value
		return true
	default:
		panic(fmt.Sprintf("domain: unknown move type %T", m))
	}
}
