// Package game holds the four betting games: selection validation, outcome
// draws and payout multipliers. It has no storage dependencies.
package game

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	NumberPick  = "number_pick"
	ColorPick   = "color_pick"
	TriplePick  = "triple_pick"
	Proposition = "proposition"
)

var (
	ErrInvalidSelection = errors.New("invalid_selection")
	ErrUnknownGame      = errors.New("unknown_game")
)

// SelectionError explains why a selection was rejected.
type SelectionError struct {
	Game   string
	Reason string
}

func (e *SelectionError) Error() string {
	return ErrInvalidSelection.Error() + ": " + e.Game + ": " + e.Reason
}

func (e *SelectionError) Unwrap() error {
	return ErrInvalidSelection
}

// Result is a settled outcome. Multiplier is zero on a loss.
type Result struct {
	Outcome    map[string]any
	Won        bool
	Multiplier decimal.Decimal
}

// Instant is a game whose outcome is drawn straight after the stake is taken.
type Instant interface {
	Name() string
	// Validate returns the normalized selection that is stored on the bet.
	Validate(raw map[string]any) (map[string]any, error)
	// Play draws an outcome for a normalized selection.
	Play(selection map[string]any, src Source) (Result, error)
}

var instantGames = map[string]Instant{
	NumberPick: numberPick{},
	ColorPick:  colorPick{},
	TriplePick: triplePick{},
}

// Lookup returns the instant game registered under name.
func Lookup(name string) (Instant, error) {
	g, ok := instantGames[name]
	if !ok {
		return nil, ErrUnknownGame
	}
	return g, nil
}

// Known reports whether name is any game type, instant or deferred.
func Known(name string) bool {
	if name == Proposition {
		return true
	}
	_, ok := instantGames[name]
	return ok
}

func loss(outcome map[string]any) Result {
	return Result{Outcome: outcome, Multiplier: decimal.Zero}
}

func selectionErr(game, reason string) error {
	return &SelectionError{Game: game, Reason: reason}
}

// toInt accepts the integer shapes a selection can carry: Go ints from
// callers, float64 and json.Number after a JSON round trip.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func toLowerString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(s)), true
}
