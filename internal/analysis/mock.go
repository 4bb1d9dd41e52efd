package analysis

import (
	"context"
	"time"

	"github.com/bloomlabs/bloom-core/internal/mood"
)

type mockAnalyzer struct{}

// NewMockAnalyzer returns an analyzer producing a deterministic result
// derived from the media length, for tests and local bring-up.
func NewMockAnalyzer() Analyzer {
	return mockAnalyzer{}
}

func (mockAnalyzer) Analyze(ctx context.Context, req Request) (mood.AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return mood.AnalysisResult{}, ctx.Err()
	case <-time.After(20 * time.Millisecond):
	}

	style := mood.Styles[len(req.Media)%len(mood.Styles)]
	return mood.AnalysisResult{
		Emotion:        "calm",
		EmpathySummary: "You took a moment for yourself, and that matters.",
		CopingPlan: []string{
			"Take three slow breaths",
			"Name one thing you are grateful for",
			"Drink a glass of water",
		},
		FlowerConfig: mood.FlowerConfig{
			BaseColor:  "#7fb8a4",
			Intensity:  1 + len(req.Media)%mood.IntensityMax,
			BloomSpeed: 1 + len(req.Media)%mood.BloomSpeedMax,
			Style:      style,
		},
		AffirmationText: "You showed up for yourself today.",
		DistressScore:   0.1,
	}, nil
}
