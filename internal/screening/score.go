// Package screening implements the visual crowding self-assessment: live
// typography sliders, a heuristic risk score, and the hand-off to the
// preference store.
package screening

import "math"

// Score weights and normalisation. These are unvalidated heuristics kept
// exactly as shipped so stored levels stay comparable.
const (
	spacingWeight = 0.5
	lineWeight    = 0.3
	weightWeight  = 0.2

	// adjScore at which the level bottoms out.
	adjScoreSpan = 0.8
)

// Risk levels. Higher is better.
const (
	LevelHighRisk = 1
	LevelNeutral  = 3
	LevelNoRisk   = 5
)

// Assessment is a computed score.
type Assessment struct {
	AdjScore float64 `json:"adjScore"`
	Level    int     `json:"level"`
}

// Score maps typography adjustments to a risk level. The further the settings
// move from the defaults, the lower the level.
func Score(letterSpacing, lineHeight, fontWeight float64) Assessment {
	spacingNorm := clamp(letterSpacing/8, 0, 1)
	lhNorm := clamp((lineHeight-1.2)/0.8, -1, 1)
	weightNorm := clamp((fontWeight-400)/500, -1, 1)

	adj := spacingWeight*math.Abs(spacingNorm) +
		lineWeight*math.Abs(lhNorm) +
		weightWeight*math.Abs(weightNorm)

	level := LevelNoRisk - int(roundHalfUp(adj/adjScoreSpan*4))
	level = max(LevelHighRisk, min(LevelNoRisk, level))

	return Assessment{AdjScore: adj, Level: level}
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
