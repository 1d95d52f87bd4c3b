// Package wordtiming estimates when each word is spoken during playback so a
// reader can highlight along with the audio.
package wordtiming

import (
	"strings"
	"unicode/utf8"
)

// WordTiming is the estimated playback window of one word.
type WordTiming struct {
	Word           string  `json:"word"`
	StartTime      float64 `json:"startTime"` // ms from audio start
	EndTime        float64 `json:"endTime"`
	CharacterIndex int     `json:"characterIndex"` // assumes single spaces between words
}

// EstimateWordTimings spreads the words of text evenly across durationMs.
func EstimateWordTimings(text string, durationMs float64) []WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []WordTiming{}
	}

	perWord := durationMs / float64(len(words))
	timings := make([]WordTiming, 0, len(words))
	charIndex := 0
	for i, w := range words {
		timings = append(timings, WordTiming{
			Word:           w,
			StartTime:      float64(i) * perWord,
			EndTime:        float64(i+1) * perWord,
			CharacterIndex: charIndex,
		})
		charIndex += utf8.RuneCountInString(w) + 1
	}
	return timings
}

// CurrentWordIndex returns the index of the word playing at currentMs, or -1.
func CurrentWordIndex(timings []WordTiming, currentMs float64) int {
	for i, t := range timings {
		if t.StartTime <= currentMs && currentMs < t.EndTime {
			return i
		}
	}
	return -1
}

// HighlightedWord returns the word playing at currentMs, or nil.
func HighlightedWord(timings []WordTiming, currentMs float64) *WordTiming {
	if i := CurrentWordIndex(timings, currentMs); i >= 0 {
		return &timings[i]
	}
	return nil
}
