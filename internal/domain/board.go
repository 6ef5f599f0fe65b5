package domain

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
	"slices"
	"strconv"
	"strings"
)

// Size は盤面の一辺の長さ
const Size = 4

// Direction はスワイプの方向を表す
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions は探索・入力処理で使う固定順の方向一覧
var Directions = []Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// スポーン確率（2が90%、4が10%）
const (
	spawn2Prob = 0.9
	spawn4Prob = 0.1
)

// SpawnValues はスワイプ後に空きマスに出現しうる値
var SpawnValues = []int{2, 4}

// SpawnProbability はvalueがスポーンする確率
func SpawnProbability(value int) float64 {
	switch value {
	case 2:
		return spawn2Prob
	case 4:
		return spawn4Prob
	default:
		return 0
	}
}

var (
	// ErrBoardFull は空きマスがなくタイルを置けないことを表す
	ErrBoardFull = errors.New("board is full")
	// ErrInvalidBoard は盤面の入力が不正であることを表す
	ErrInvalidBoard = errors.New("invalid board")
)

// Board は4x4の2048ゲーム盤面を表す
// 値型なので代入でコピーされる
type Board struct {
	cells [Size][Size]int
}

// Placement はランダム挿入で置かれたタイル
type Placement struct {
	Row, Col, Value int
}

// NewBoard は空のBoardを生成する
func NewBoard() Board {
	return Board{}
}

// NewBoardFromCells はセルの値を指定してBoardを生成する
func NewBoardFromCells(cells [Size][Size]int) Board {
	return Board{cells: cells}
}

// ParseBoard は空白区切りの16個の数値から盤面を作る（0は空）
func ParseBoard(s string) (Board, error) {
	parts := strings.Fields(s)
	if len(parts) != Size*Size {
		return Board{}, fmt.Errorf("%w: need %d numbers, got %d", ErrInvalidBoard, Size*Size, len(parts))
	}

	var cells [Size][Size]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Board{}, fmt.Errorf("%w: %q: %v", ErrInvalidBoard, p, err)
		}
		if v < 0 || (v != 0 && (v == 1 || bits.OnesCount(uint(v)) != 1)) {
			return Board{}, fmt.Errorf("%w: %d is not a tile value", ErrInvalidBoard, v)
		}
		cells[i/Size][i%Size] = v
	}
	return NewBoardFromCells(cells), nil
}

// Get は指定した位置のセル値を取得する
func (b Board) Get(row, col int) int {
	return b.cells[row][col]
}

// Set は指定した位置に値を設定した新しいBoardを返す
func (b Board) Set(row, col, value int) Board {
	b.cells[row][col] = value
	return b
}

// Copy はBoardのコピーを返す
func (b Board) Copy() Board {
	return Board{cells: b.cells}
}

// EmptyCells は空のセルの座標を行優先で返す
func (b Board) EmptyCells() [][2]int {
	empty := make([][2]int, 0, Size*Size)
	for r, row := range b.cells {
		for c, v := range row {
			if v == 0 {
				empty = append(empty, [2]int{r, c})
			}
		}
	}
	return empty
}

// Count は埋まっているセルの数を返す
func (b Board) Count() int {
	return Size*Size - len(b.EmptyCells())
}

// Sum は全タイルの合計値
func (b Board) Sum() int {
	sum := 0
	for _, row := range b.cells {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// MaxTile は最大タイルの値
func (b Board) MaxTile() int {
	top := 0
	for _, row := range b.cells {
		top = max(top, slices.Max(row[:]))
	}
	return top
}

// Swipe は指定した方向にスワイプして盤面を更新する
// 盤面が変化しない場合は何もせずfalseを返す
func (b *Board) Swipe(dir Direction) bool {
	swiped, _ := b.SwipeWithoutSpawn(dir)
	if swiped.Equal(*b) {
		return false
	}
	*b = swiped
	return true
}

// AddRandom は空きマスを一様に選び、2（90%）か4（10%）を置く
func (b *Board) AddRandom(rng *rand.Rand) (Placement, error) {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return Placement{}, ErrBoardFull
	}

	pos := empty[rng.Intn(len(empty))]
	val := 2
	if rng.Float64() >= spawn2Prob {
		val = 4
	}
	b.cells[pos[0]][pos[1]] = val
	return Placement{Row: pos[0], Col: pos[1], Value: val}, nil
}

// ComputerMove はプレイヤーの手の後に行うランダム挿入
func (b *Board) ComputerMove(rng *rand.Rand) (Placement, error) {
	return b.AddRandom(rng)
}

// Placements は空きマスにSpawnValuesを置く全ての手を列挙する
func (b Board) Placements() []ComputerMove {
	empty := b.EmptyCells()
	moves := make([]ComputerMove, 0, len(empty)*len(SpawnValues))
	for _, pos := range empty {
		for _, val := range SpawnValues {
			moves = append(moves, ComputerMove{Row: pos[0], Col: pos[1], Value: val})
		}
	}
	return moves
}

// lines はスワイプ方向ごとの4本のライン。各ラインは寄せる側の端から並べたマス
var lines = func() map[Direction][Size][Size][2]int {
	m := make(map[Direction][Size][Size][2]int, len(Directions))
	for _, dir := range Directions {
		var ls [Size][Size][2]int
		for i := 0; i < Size; i++ {
			for k := 0; k < Size; k++ {
				switch dir {
				case Up:
					ls[i][k] = [2]int{k, i}
				case Down:
					ls[i][k] = [2]int{Size - 1 - k, i}
				case Left:
					ls[i][k] = [2]int{i, k}
				case Right:
					ls[i][k] = [2]int{i, Size - 1 - k}
				}
			}
		}
		m[dir] = ls
	}
	return m
}()

// SwipeWithoutSpawn は指定した方向にスワイプした結果の盤面とマージで得た点数を返す（spawnなし）
func (b Board) SwipeWithoutSpawn(dir Direction) (Board, int) {
	ls, ok := lines[dir]
	if !ok {
		return b, 0
	}

	var next Board
	total := 0
	for _, cells := range ls {
		var line [Size]int
		for k, pos := range cells {
			line[k] = b.cells[pos[0]][pos[1]]
		}
		merged, score := mergeLine(line)
		total += score
		for k, pos := range cells {
			next.cells[pos[0]][pos[1]] = merged[k]
		}
	}
	return next, total
}

// CanSwipe は指定方向のスワイプで盤面が変化するかを返す
func (b Board) CanSwipe(dir Direction) bool {
	swiped, _ := b.SwipeWithoutSpawn(dir)
	return !swiped.Equal(b)
}

// LegalSwipes は盤面が変化する方向をDirections順で返す
func (b Board) LegalSwipes() []Direction {
	legal := make([]Direction, 0, len(Directions))
	for _, dir := range Directions {
		if b.CanSwipe(dir) {
			legal = append(legal, dir)
		}
	}
	return legal
}

// mergeLine はラインを先頭側へ詰めてマージし、結果と点数を返す
// 先頭から1回だけ走査し、マージで生まれたタイルは同じスワイプで再びマージしない
func mergeLine(line [Size]int) ([Size]int, int) {
	var out [Size]int
	n, score := 0, 0
	merged := false
	for _, v := range line {
		switch {
		case v == 0:
		case n > 0 && !merged && out[n-1] == v:
			out[n-1] *= 2
			score += out[n-1]
			merged = true
		default:
			out[n] = v
			n++
			merged = false
		}
	}
	return out, score
}

// IsGameOver は全方向にスワイプできない（ゲームオーバー）かどうかを返す
func (b Board) IsGameOver() bool {
	return !slices.ContainsFunc(Directions, b.CanSwipe)
}

// Equal は2つのBoardが等しいかどうかを返す
func (b Board) Equal(other Board) bool {
	return b.cells == other.cells
}

// String はBoardをASCIIアートとして表示する
func (b Board) String() string {
	line := "+------+------+------+------+"
	var sb strings.Builder
	sb.WriteString(line + "\n")
	for r := 0; r < Size; r++ {
		sb.WriteString("|")
		for c := 0; c < Size; c++ {
			if b.cells[r][c] == 0 {
				sb.WriteString("      |")
			} else {
				fmt.Fprintf(&sb, "%5d |", b.cells[r][c])
			}
		}
		sb.WriteString("\n" + line + "\n")
	}
	return sb.String()
}
