package ensemble

import (
	"encoding/json"
	"math"
	"testing"
)

// FuzzParseBaseScore fuzzes the base-score decoder across its historical
// encodings. Any accepted value must be a finite float.
func FuzzParseBaseScore(f *testing.F) {
	seeds := []string{
		`0.5`,
		`"[0.5]"`,
		`[0.5]`,
		`"0.25"`,
		``,
		`"[]"`,
		`{"nested": true}`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		v, err := parseBaseScore(json.RawMessage(raw))
		if err != nil {
			return
		}
		if math.IsNaN(v) {
			t.Fatalf("parseBaseScore(%q) accepted NaN", raw)
		}
	})
}

// FuzzScoreBounds checks the sigmoid output stays in (0, 1) for any base
// score, including extreme magnitudes.
func FuzzScoreBounds(f *testing.F) {
	for _, seed := range []float64{0, 1, -1, 100, -100, math.MaxFloat64, -math.MaxFloat64} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, base float64) {
		if math.IsNaN(base) {
			t.Skip()
		}
		s := loadedScorer(&Model{BaseScore: base})
		score, err := s.Score(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if score < 0 || score > 1 || math.IsNaN(score) {
			t.Fatalf("score %v out of range for base %v", score, base)
		}
	})
}
