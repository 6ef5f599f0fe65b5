package domain

import (
	"math/rand"
	"testing"
)

func TestNewGame(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	game := NewGame(rng)

	if game.Score() != 0 || game.Moves() != 0 {
		t.Errorf("expected a fresh game, got score=%d moves=%d", game.Score(), game.Moves())
	}
	if game.Board().Count() != 2 {
		t.Errorf("expected 2 initial tiles, got %d", game.Board().Count())
	}
}

func TestGameMove(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	game := NewGame(rng)

	for i := 0; i < 50 && !game.IsGameOver(); i++ {
		before := game.Board()
		moved, err := game.Move(Directions[i%4])
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		after := game.Board()
		if !moved {
			if after != before {
				t.Fatalf("board changed on a rejected move")
			}
			continue
		}
		// スワイプで枚数は増えず、配置で1枚だけ増える
		if after.Count() > before.Count()+1 {
			t.Fatalf("move added more than one tile")
		}
	}
}

func TestGameScoreIncreases(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	game := NewGameFromBoard(NewBoardFromCells([4][4]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}), rng)

	moved, err := game.Move(Left)
	if !moved || err != nil {
		t.Errorf("expected move to succeed, got %v, %v", moved, err)
	}

	if game.Score() != 4 {
		t.Errorf("expected score 4, got %d", game.Score())
	}
	if game.Moves() != 1 {
		t.Errorf("expected 1 move, got %d", game.Moves())
	}
}

func TestGameSwipeWithoutSpawn(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	game := NewGameFromBoard(NewBoardFromCells([4][4]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}), rng)

	if game.Swipe(Right) {
		t.Error("expected Right to be rejected")
	}
	if !game.Swipe(Left) {
		t.Fatal("expected Left to succeed")
	}
	if game.Board().Count() != 1 {
		t.Errorf("Swipe must not place a tile, got %d tiles", game.Board().Count())
	}

	p, err := game.ComputerMove()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if game.Board().Get(p.Row, p.Col) != p.Value {
		t.Errorf("placement %+v not on the board", p)
	}
}
