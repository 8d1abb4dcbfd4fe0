package engine

import (
	"encoding/json"
	"math"
	"strconv"
)

// Normalize turns a server snapshot into the canonical State.
//
// raw may be the decoded JSON value (map[string]any), undecoded JSON bytes,
// or an already canonical State. nil and anything that is not a JSON object
// yield nil, meaning "no session". Missing or mistyped fields fall back to
// safe defaults; Normalize never fails on shape.
func Normalize(raw any) *State {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return normalizeObject(v)
	case State:
		return Normalize(canonicalRaw(v))
	case *State:
		if v == nil {
			return nil
		}
		return Normalize(canonicalRaw(*v))
	case json.RawMessage:
		return normalizeBytes(v)
	case []byte:
		return normalizeBytes(v)
	default:
		return nil
	}
}

func normalizeBytes(b []byte) *State {
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil
	}
	return Normalize(decoded)
}

// canonicalRaw round-trips a State through its JSON form so re-normalizing
// goes through exactly the same path as a server snapshot.
func canonicalRaw(s State) any {
	b, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil
	}
	return decoded
}

func normalizeObject(obj map[string]any) *State {
	s := State{}

	s.GameID = stringOr(first(obj, "game_id", "gameId"), "")
	s.Difficulty, _ = ParseDifficulty(stringOr(obj["difficulty"], ""))

	level, ok := number(obj["level"])
	if !ok {
		level = MinLevel
	}
	s.Level = ClampLevel(level)

	s.Maze = normalizeMaze(obj["maze"])

	if p, ok := position(first(obj, "player_position", "playerPosition")); ok {
		s.Player = p
	} else if p, ok := coordinates(obj, "x", "y"); ok {
		s.Player = p
	}
	if !s.InBounds(s.Player) {
		s.Player = clampToGrid(s.Player, s.Maze)
	}

	s.Health = clamp(numberOr(obj["health"], 0), 0, 100)
	s.Energy = clamp(numberOr(obj["energy"], 0), 0, 100)
	s.TimeLeft = atLeastZero(numberOr(first(obj, "time_left", "time"), 0))
	s.Score = atLeastZero(numberOr(obj["score"], 0))
	s.Lives = atLeastZero(numberOr(obj["lives"], 0))
	s.KeysRequired = atLeastZero(numberOr(obj["keys_required"], 0))
	s.KeysCollected = atLeastZero(numberOr(obj["keys_collected"], 0))
	s.MapTimer = atLeastZero(numberOr(first(obj, "map_timer", "mapTimer"), 0))

	s.Enemies = normalizeEnemies(obj["enemies"])
	s.Puzzle = normalizePuzzle(obj["puzzle"])
	s.ShowPuzzle = s.Puzzle != nil

	s.MapVisible = boolOr(first(obj, "map_visible", "mapVisible"), false)
	s.FlashlightActive = boolOr(obj["flashlightActive"], false)
	s.CompassActive = boolOr(obj["compassActive"], false)
	s.IsTimeFrozen = boolOr(obj["isTimeFrozen"], false)
	s.PlayerHit = boolOr(obj["player_hit"], false)

	s.Phase = normalizePhase(obj["phase"], s.GameID)
	return &s
}

func normalizePhase(v any, gameID string) Phase {
	if gameID == "" {
		return PhaseMenu
	}
	if p, ok := ParsePhase(stringOr(v, "")); ok {
		return p
	}
	return PhasePlaying
}

// normalizeMaze pads ragged rows with walls so the grid is rectangular.
func normalizeMaze(v any) [][]int {
	rows, ok := v.([]any)
	if !ok {
		return [][]int{}
	}
	width := 0
	for _, r := range rows {
		if cells, ok := r.([]any); ok && len(cells) > width {
			width = len(cells)
		}
	}
	if width == 0 {
		return [][]int{}
	}
	maze := make([][]int, len(rows))
	for y, r := range rows {
		cells, _ := r.([]any)
		row := make([]int, width)
		for x := range row {
			row[x] = CellWall
			if x < len(cells) {
				if c, ok := number(cells[x]); ok {
					row[x] = c
				}
			}
		}
		maze[y] = row
	}
	return maze
}

// normalizeEnemies keeps one entry per raw element, malformed ones included.
func normalizeEnemies(v any) []Enemy {
	raw, ok := v.([]any)
	if !ok {
		return []Enemy{}
	}
	enemies := make([]Enemy, len(raw))
	for i, el := range raw {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		e := Enemy{ID: identifier(obj["id"])}
		if p, ok := position(obj["position"]); ok {
			e.Position = p
		} else if p, ok := coordinates(obj, "x", "y"); ok {
			e.Position = p
		}
		enemies[i] = e
	}
	return enemies
}

func normalizePuzzle(v any) *Puzzle {
	if falsy(v) {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return &Puzzle{Sequence: []string{}, Progress: []string{}}
	}
	return &Puzzle{
		Sequence: stringList(obj["sequence"]),
		Progress: stringList(obj["progress"]),
	}
}

// first returns the value of the first key present with a non-null value.
func first(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func position(v any) (Position, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Position{}, false
	}
	return Position{X: numberOr(obj["x"], 0), Y: numberOr(obj["y"], 0)}, true
}

func coordinates(obj map[string]any, xKey, yKey string) (Position, bool) {
	x, okX := number(obj[xKey])
	y, okY := number(obj[yKey])
	if !okX && !okY {
		return Position{}, false
	}
	return Position{X: x, Y: y}, true
}

func clampToGrid(p Position, maze [][]int) Position {
	if len(maze) == 0 {
		return p
	}
	p.X = clamp(p.X, 0, len(maze[0])-1)
	p.Y = clamp(p.Y, 0, len(maze)-1)
	return p
}

// number accepts every numeric representation encoding/json can produce.
// Fractions are truncated toward zero.
func number(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case float32:
		return number(float64(n))
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return number(f)
		}
	}
	return 0, false
}

// falsy reports whether v is null, false, zero, NaN or the empty string.
func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case float64:
		return x == 0 || math.IsNaN(x)
	case float32:
		return x == 0 || math.IsNaN(float64(x))
	case int:
		return x == 0
	case int64:
		return x == 0
	case int32:
		return x == 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && (f == 0 || math.IsNaN(f))
	}
	return false
}

func numberOr(v any, fallback int) int {
	if n, ok := number(v); ok {
		return n
	}
	return fallback
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func boolOr(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

func identifier(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	case int:
		return strconv.Itoa(id)
	}
	return ""
}

func stringList(v any) []string {
	out := []string{}
	raw, ok := v.([]any)
	if !ok {
		return out
	}
	for _, el := range raw {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func atLeastZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
