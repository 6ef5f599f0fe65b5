package domain

import "math/rand"

// Game は2048ゲームの状態を管理する
type Game struct {
	board Board
	score int
	moves int
	rng   *rand.Rand
}

// NewGame は新しいゲームを開始する
func NewGame(rng *rand.Rand) *Game {
	g := &Game{
		board: NewBoard(),
		rng:   rng,
	}
	// 初期配置として2つのタイルを配置
	g.board.AddRandom(rng)
	g.board.AddRandom(rng)
	return g
}

// NewGameFromBoard は指定した盤面からゲームを始める
func NewGameFromBoard(board Board, rng *rand.Rand) *Game {
	return &Game{board: board, rng: rng}
}

// Board は現在の盤面のコピーを返す
func (g *Game) Board() Board {
	return g.board
}

// Score は現在のスコアを返す
func (g *Game) Score() int {
	return g.score
}

// Moves は盤面を変化させたスワイプの回数
func (g *Game) Moves() int {
	return g.moves
}

// IsGameOver はゲームオーバーかどうかを返す
func (g *Game) IsGameOver() bool {
	return g.board.IsGameOver()
}

// Swipe はプレイヤーのスワイプを適用する（spawnなし）
// 盤面が変化した場合はtrueを返す
func (g *Game) Swipe(dir Direction) bool {
	newBoard, score := g.board.SwipeWithoutSpawn(dir)
	if newBoard.Equal(g.board) {
		return false
	}

	g.score += score
	g.moves++
	g.board = newBoard
	return true
}

// ComputerMove は空きマスにランダムにタイルを配置する
func (g *Game) ComputerMove() (Placement, error) {
	return g.board.ComputerMove(g.rng)
}

// Move はスワイプとタイル配置を続けて行う
// 盤面が変化した場合はtrueを返す。配置に失敗した場合はそのエラーも返す
func (g *Game) Move(dir Direction) (bool, error) {
	if !g.Swipe(dir) {
		return false, nil
	}
	if _, err := g.ComputerMove(); err != nil {
		return true, err
	}
	return true, nil
}
