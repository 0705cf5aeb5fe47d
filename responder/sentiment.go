package responder

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// DefaultThreshold is the compound-score cutoff used when a Scorer is configured.
const DefaultThreshold = 0.1

// DefaultPositiveKeywords and DefaultNegativeKeywords drive the keyword fallback.
var (
	DefaultPositiveKeywords = []string{
		"love", "amazing", "awesome", "fantastic", "wonderful",
		"excellent", "great", "good", "happy", "excited", "nice",
	}
	DefaultNegativeKeywords = []string{
		"hate", "terrible", "awful", "horrible", "worst",
		"bad", "sad", "angry", "upset", "frustrated", "dislike",
	}
)

// Scorer computes a compound polarity score in [-1, 1] for a message.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ClassifierOptions configures a Classifier. Zero values select the defaults.
type ClassifierOptions struct {
	// Scorer is the optional advanced engine. Nil means keyword matching only.
	Scorer Scorer

	Threshold float64
	Positive  []string
	Negative  []string

	Logger *zap.Logger
}

// Classifier maps text to a Sentiment. It never fails: any problem in the
// advanced engine degrades to keyword matching.
type Classifier struct {
	scorer    Scorer
	threshold float64
	positive  []string
	negative  []string
	logger    *zap.Logger
}

func NewClassifier(opts ClassifierOptions) *Classifier {
	c := &Classifier{
		scorer:    opts.Scorer,
		threshold: opts.Threshold,
		positive:  opts.Positive,
		negative:  opts.Negative,
		logger:    opts.Logger,
	}
	if c.threshold <= 0 {
		c.threshold = DefaultThreshold
	}
	if len(c.positive) == 0 {
		c.positive = DefaultPositiveKeywords
	}
	if len(c.negative) == 0 {
		c.negative = DefaultNegativeKeywords
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *Classifier) Classify(ctx context.Context, text string) Sentiment {
	if c.scorer != nil {
		score, err := c.score(ctx, text)
		if err == nil {
			return c.fromScore(score)
		}
		c.logger.Debug("sentiment scorer failed, using keywords", zap.Error(err))
	}
	return c.fromKeywords(text)
}

func (c *Classifier) score(ctx context.Context, text string) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panic: %v", r)
		}
	}()
	score, err = c.scorer.Score(ctx, text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(score) || score < -1 || score > 1 {
		return 0, fmt.Errorf("score out of range: %v", score)
	}
	return score, nil
}

func (c *Classifier) fromScore(score float64) Sentiment {
	switch {
	case score >= c.threshold:
		return Positive
	case score <= -c.threshold:
		return Negative
	default:
		return Neutral
	}
}

func (c *Classifier) fromKeywords(text string) Sentiment {
	lower := strings.ToLower(strings.TrimSpace(text))
	if containsAny(lower, c.positive) {
		return Positive
	}
	if containsAny(lower, c.negative) {
		return Negative
	}
	return Neutral
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
