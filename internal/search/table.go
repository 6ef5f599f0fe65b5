package search

import (
	"math"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Flag は置換表のスコアの種類
type Flag uint8

const (
	Exact Flag = iota
	Lower
	Upper
)

// Side はどちらの手番の局面か
type Side uint8

const (
	SidePlayer Side = iota
	SideChance
)

type ttEntry struct {
	key   uint64
	score float64
	gen   uint32
	depth int8
	flag  Flag
	side  Side
	valid bool
}

const entrySize = int(unsafe.Sizeof(ttEntry{}))

const maxStripes = 64

// TranspositionTable は探索ワーカー間、フレーム間で共有する置換表
// 固定長の配列をストライプロックで守るので、読み手が書きかけのエントリを見ることはない
type TranspositionTable struct {
	entries     []ttEntry
	mask        uint64
	stripeLocks []sync.RWMutex
	stripeMask  uint64
	gen         atomic.Uint32

	lookups atomic.Uint64
	hits    atomic.Uint64
	stores  atomic.Uint64
}

// NewTranspositionTable はbyteSizeに収まる最大の2の累乗個のスロットを確保する
func NewTranspositionTable(byteSize int) *TranspositionTable {
	slots := uint64(1)
	for int(slots*2)*entrySize <= byteSize {
		slots *= 2
	}
	stripes := uint64(1)
	for stripes*2 <= maxStripes && stripes*2 <= slots {
		stripes *= 2
	}
	tt := &TranspositionTable{
		entries:     make([]ttEntry, slots),
		mask:        slots - 1,
		stripeLocks: make([]sync.RWMutex, stripes),
		stripeMask:  stripes - 1,
	}
	tt.gen.Store(1)
	return tt
}

// Slots はスロット数
func (tt *TranspositionTable) Slots() int {
	return len(tt.entries)
}

// ByteSize は確保したエントリ領域のバイト数
func (tt *TranspositionTable) ByteSize() int {
	return len(tt.entries) * entrySize
}

// NextGeneration は新しい探索の開始を記録する
// 古い世代のエントリは深さに関係なく上書きされる
func (tt *TranspositionTable) NextGeneration() {
	if tt.gen.Add(1) == 0 {
		tt.gen.CompareAndSwap(0, 1)
	}
}

// Clear は全エントリを消す
func (tt *TranspositionTable) Clear() {
	for i := range tt.stripeLocks {
		tt.stripeLocks[i].Lock()
	}
	defer func() {
		for i := range tt.stripeLocks {
			tt.stripeLocks[i].Unlock()
		}
	}()
	clear(tt.entries)
	tt.gen.Store(1)
}

func (tt *TranspositionTable) index(key uint64, side Side) uint64 {
	// 手番でずらして同じ盤面の両手番がぶつからないようにする
	h := key ^ uint64(side)*0x9E3779B97F4A7C15
	h ^= h >> 29
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 32
	return h & tt.mask
}

func (tt *TranspositionTable) stripe(idx uint64) *sync.RWMutex {
	return &tt.stripeLocks[idx&tt.stripeMask]
}

// Probe は残り深さdepth以上で保存されたエントリを探す
func (tt *TranspositionTable) Probe(key uint64, side Side, depth int) (score float64, flag Flag, ok bool) {
	tt.lookups.Add(1)
	idx := tt.index(key, side)
	mu := tt.stripe(idx)
	mu.RLock()
	e := tt.entries[idx]
	mu.RUnlock()

	if !e.valid || e.key != key || e.side != side || int(e.depth) < depth {
		return 0, Exact, false
	}
	tt.hits.Add(1)
	return e.score, e.flag, true
}

// Store は探索結果を書き込む
// 空き、同一局面、より深い探索、古い世代のいずれかなら上書きする
func (tt *TranspositionTable) Store(key uint64, side Side, depth int, score float64, flag Flag) {
	idx := tt.index(key, side)
	gen := tt.gen.Load()
	mu := tt.stripe(idx)
	mu.Lock()
	defer mu.Unlock()

	e := &tt.entries[idx]
	sameNode := e.valid && e.key == key && e.side == side
	if e.valid && !sameNode && e.gen == gen && int(e.depth) > depth {
		return
	}
	if sameNode && int(e.depth) > depth && e.gen == gen {
		return
	}
	*e = ttEntry{
		key:   key,
		score: score,
		gen:   gen,
		depth: int8(min(depth, math.MaxInt8)),
		flag:  flag,
		side:  side,
		valid: true,
	}
	tt.stores.Add(1)
}

// TableStats は置換表の統計
type TableStats struct {
	Lookups uint64
	Hits    uint64
	Stores  uint64
}

// Stats は累計の統計を返す
func (tt *TranspositionTable) Stats() TableStats {
	return TableStats{
		Lookups: tt.lookups.Load(),
		Hits:    tt.hits.Load(),
		Stores:  tt.stores.Load(),
	}
}
