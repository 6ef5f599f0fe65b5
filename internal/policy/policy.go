package policy

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/nnaakkaaii/auto2048/internal/domain"
	"github.com/nnaakkaaii/auto2048/internal/record"
)

// ErrNotEnoughData は学習に使える記録が足りない
var ErrNotEnoughData = errors.New("not enough recorded moves")

// maxLog2 は特徴量を正規化するときの上限（2^17 = 131072）
const maxLog2 = 17

// NumFeatures は盤面16マスと4方向の合法フラグ
const NumFeatures = domain.Size*domain.Size + 4

// Config はポリシーネットワークの設定
type Config struct {
	Hidden       []int
	LearningRate float64
	Iterations   int
	// Validation は検証に回す記録の割合
	Validation  float64
	MinExamples int
}

// DefaultConfig はデフォルトの設定を返す
func DefaultConfig() Config {
	return Config{
		Hidden:       []int{64, 32},
		LearningRate: 0.01,
		Iterations:   20,
		Validation:   0.2,
		MinExamples:  10,
	}
}

// Policy は記録された手から方向を予測するネットワーク
// usecase.MoveChooserとしてTurnLoopに渡せる
type Policy struct {
	net    *deep.Neural
	config Config
}

// New は未学習のPolicyを生成する
func New(config Config) *Policy {
	layout := append(append([]int{}, config.Hidden...), len(domain.Directions))
	net := deep.NewNeural(&deep.Config{
		Inputs:     NumFeatures,
		Layout:     layout,
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeMultiClass,
		Loss:       deep.LossCrossEntropy,
		Weight:     deep.NewNormal(0.1, 0.0),
		Bias:       true,
	})
	return &Policy{net: net, config: config}
}

// Features は盤面をネットワークの入力にする
func Features(b domain.Board) []float64 {
	features := make([]float64, 0, NumFeatures)
	for r := 0; r < domain.Size; r++ {
		for c := 0; c < domain.Size; c++ {
			v := b.Get(r, c)
			if v == 0 {
				features = append(features, 0)
				continue
			}
			features = append(features, float64(bits.TrailingZeros(uint(v)))/maxLog2)
		}
	}
	for _, dir := range domain.Directions {
		features = append(features, lo.Ternary(b.CanSwipe(dir), 1.0, 0.0))
	}
	return features
}

func oneHot(dir domain.Direction) []float64 {
	out := make([]float64, len(domain.Directions))
	out[dir] = 1
	return out
}

// TrainResult は1回の学習の結果
type TrainResult struct {
	Train      int
	Validation int
	// Accuracy は検証データ（なければ学習データ）での正解率
	Accuracy float64
}

// Train は記録をシャッフルして学習用と検証用に分け、ネットワークを学習させる
func (p *Policy) Train(pairs []record.Pair) (TrainResult, error) {
	if len(pairs) < max(p.config.MinExamples, 1) {
		return TrainResult{}, fmt.Errorf("train on %d pairs: %w", len(pairs), ErrNotEnoughData)
	}

	examples := training.Examples(lo.Map(pairs, func(pair record.Pair, _ int) training.Example {
		return training.Example{Input: Features(pair.Input), Response: oneHot(pair.Output)}
	}))
	frand.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	nval := int(float64(len(examples)) * p.config.Validation)
	validation, train := examples[:nval], examples[nval:]

	trainer := training.NewTrainer(training.NewSGD(p.config.LearningRate, 0.5, 0.0, false), 0)
	trainer.Train(p.net, train, validation, p.config.Iterations)

	scored := validation
	if len(scored) == 0 {
		scored = train
	}
	result := TrainResult{
		Train:      len(train),
		Validation: len(validation),
		Accuracy:   p.accuracy(scored),
	}
	log.Info().
		Int("train", result.Train).
		Int("validation", result.Validation).
		Float64("accuracy", result.Accuracy).
		Msg("policy-trained")
	return result, nil
}

func (p *Policy) accuracy(examples training.Examples) float64 {
	if len(examples) == 0 {
		return 0
	}
	correct := lo.CountBy(examples, func(e training.Example) bool {
		return argmax(p.net.Predict(e.Input)) == argmax(e.Response)
	})
	return float64(correct) / float64(len(examples))
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

// Predict は各方向の確率をDirections順に返す
func (p *Policy) Predict(b domain.Board) []float64 {
	return p.net.Predict(Features(b))
}

// Best は合法なスワイプの中で確率が最も高い方向を返す
func (p *Policy) Best(b domain.Board) (domain.Direction, bool) {
	legal := b.LegalSwipes()
	if len(legal) == 0 {
		return 0, false
	}
	probs := p.Predict(b)
	return lo.MaxBy(legal, func(a, best domain.Direction) bool {
		return probs[a] > probs[best]
	}), true
}

// SetMaxDepth はネットワークには深さがないので何もしない
func (p *Policy) SetMaxDepth(int) {}

// ChooseMove はBestをPlayerMoveとして返す
func (p *Policy) ChooseMove(b domain.Board) (domain.Move, bool) {
	dir, ok := p.Best(b)
	if !ok {
		return nil, false
	}
	return domain.PlayerMove{Dir: dir}, true
}
