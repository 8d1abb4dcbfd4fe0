package progress

import (
	"fmt"
	"maps"
	"slices"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
)

// Record is the durable ledger of unlocked levels and best results. Unlocked
// sets only grow and best values only increase.
type Record struct {
	Unlocked   map[engine.Difficulty][]int `json:"unlocked"`
	BestTimes  map[string]int              `json:"bestTimes"`
	BestScores map[string]int              `json:"bestScores"`
}

// Key is the "difficulty:level" index used by the best-value maps.
func Key(d engine.Difficulty, level int) string {
	return fmt.Sprintf("%s:%d", d, level)
}

func DefaultRecord() Record {
	r := Record{
		Unlocked:   map[engine.Difficulty][]int{},
		BestTimes:  map[string]int{},
		BestScores: map[string]int{},
	}
	for _, d := range engine.Difficulties {
		r.Unlocked[d] = []int{engine.MinLevel}
	}
	return r
}

func (r Record) Clone() Record {
	out := Record{
		Unlocked:   make(map[engine.Difficulty][]int, len(r.Unlocked)),
		BestTimes:  maps.Clone(r.BestTimes),
		BestScores: maps.Clone(r.BestScores),
	}
	for d, levels := range r.Unlocked {
		out.Unlocked[d] = slices.Clone(levels)
	}
	if out.BestTimes == nil {
		out.BestTimes = map[string]int{}
	}
	if out.BestScores == nil {
		out.BestScores = map[string]int{}
	}
	return out
}

func (r Record) IsUnlocked(d engine.Difficulty, level int) bool {
	return slices.Contains(r.Unlocked[d], level)
}

func (r Record) BestTime(d engine.Difficulty, level int) int {
	return r.BestTimes[Key(d, level)]
}

func (r Record) BestScore(d engine.Difficulty, level int) int {
	return r.BestScores[Key(d, level)]
}

// withUnlocked returns a copy with level added to d's set.
func (r Record) withUnlocked(d engine.Difficulty, level int) Record {
	out := r.Clone()
	out.Unlocked[d] = addLevel(out.Unlocked[d], level)
	return out
}

// withBest returns a copy where the best values for key are at least the given ones.
func (r Record) withBest(key string, timeLeft, score int) Record {
	out := r.Clone()
	if prev, ok := out.BestTimes[key]; !ok || timeLeft > prev {
		out.BestTimes[key] = timeLeft
	}
	if prev, ok := out.BestScores[key]; !ok || score > prev {
		out.BestScores[key] = score
	}
	return out
}

// sanitize fills in defaults and drops levels outside the playable range.
func (r Record) sanitize() Record {
	out := r.Clone()
	for d, levels := range out.Unlocked {
		kept := slices.DeleteFunc(levels, func(l int) bool {
			return l < engine.MinLevel || l > engine.MaxLevel
		})
		slices.Sort(kept)
		out.Unlocked[d] = addLevel(slices.Compact(kept), engine.MinLevel)
	}
	for _, d := range engine.Difficulties {
		if _, ok := out.Unlocked[d]; !ok {
			out.Unlocked[d] = []int{engine.MinLevel}
		}
	}
	return out
}

// merge combines two records without losing anything either one holds:
// set union for unlocked levels, maximum for best values.
func merge(a, b Record) Record {
	out := a.Clone()
	for d, levels := range b.Unlocked {
		for _, l := range levels {
			out.Unlocked[d] = addLevel(out.Unlocked[d], l)
		}
	}
	for k, v := range b.BestTimes {
		if prev, ok := out.BestTimes[k]; !ok || v > prev {
			out.BestTimes[k] = v
		}
	}
	for k, v := range b.BestScores {
		if prev, ok := out.BestScores[k]; !ok || v > prev {
			out.BestScores[k] = v
		}
	}
	return out
}

func addLevel(levels []int, level int) []int {
	if slices.Contains(levels, level) {
		return levels
	}
	levels = append(slices.Clone(levels), level)
	slices.Sort(levels)
	return levels
}
