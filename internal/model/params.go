package model

import "fmt"

// Params are the training hyperparameters. Defaults reproduce the
// tuned production configuration.
type Params struct {
	Rounds          int     `yaml:"rounds" envconfig:"ROUNDS"`
	MaxDepth        int     `yaml:"max_depth" envconfig:"MAX_DEPTH"`
	LearningRate    float64 `yaml:"learning_rate" envconfig:"LEARNING_RATE"`
	PositiveWeight  float64 `yaml:"positive_weight" envconfig:"POSITIVE_WEIGHT"`
	MinChildWeight  float64 `yaml:"min_child_weight" envconfig:"MIN_CHILD_WEIGHT"`
	Lambda          float64 `yaml:"lambda" envconfig:"LAMBDA"`
	OversampleRatio int     `yaml:"oversample_ratio" envconfig:"OVERSAMPLE_RATIO"`
	Seed            int64   `yaml:"seed" envconfig:"SEED"`
}

// DefaultParams returns the production training configuration.
func DefaultParams() Params {
	return Params{
		Rounds:          70,
		MaxDepth:        2,
		LearningRate:    0.1,
		PositiveWeight:  70,
		MinChildWeight:  10,
		Lambda:          1,
		OversampleRatio: 6,
		Seed:            42,
	}
}

// Validate rejects configurations the trainer cannot run with.
func (p Params) Validate() error {
	if p.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", p.Rounds)
	}
	if p.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", p.MaxDepth)
	}
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		return fmt.Errorf("learning rate must be in (0, 1], got %g", p.LearningRate)
	}
	if p.PositiveWeight <= 0 {
		return fmt.Errorf("positive weight must be positive, got %g", p.PositiveWeight)
	}
	if p.MinChildWeight < 0 {
		return fmt.Errorf("min child weight must not be negative, got %g", p.MinChildWeight)
	}
	if p.Lambda < 0 {
		return fmt.Errorf("lambda must not be negative, got %g", p.Lambda)
	}
	if p.OversampleRatio <= 0 {
		return fmt.Errorf("oversample ratio must be positive, got %d", p.OversampleRatio)
	}
	return nil
}
