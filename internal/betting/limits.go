package betting

import (
	"fmt"

	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/game"

	"github.com/shopspring/decimal"
)

type StakeLimit struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Limits maps a game type to its stake bounds.
type Limits map[string]StakeLimit

func DefaultLimits() Limits {
	return Limits{
		game.NumberPick:  {Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(500)},
		game.ColorPick:   {Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(500)},
		game.TriplePick:  {Min: decimal.NewFromInt(2), Max: decimal.NewFromInt(100)},
		game.Proposition: {Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(1000)},
	}
}

// LimitsFromConfig parses configured bounds. Min must not exceed Max.
func LimitsFromConfig(cfg config.LimitsConfig) (Limits, error) {
	raw := map[string][2]string{
		game.NumberPick:  {cfg.NumberPickMin, cfg.NumberPickMax},
		game.ColorPick:   {cfg.ColorPickMin, cfg.ColorPickMax},
		game.TriplePick:  {cfg.TriplePickMin, cfg.TriplePickMax},
		game.Proposition: {cfg.PropositionMin, cfg.PropositionMax},
	}
	out := Limits{}
	for g, bounds := range raw {
		lo, err := decimal.NewFromString(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("%s min stake: %w", g, err)
		}
		hi, err := decimal.NewFromString(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("%s max stake: %w", g, err)
		}
		if lo.Sign() <= 0 || lo.GreaterThan(hi) {
			return nil, fmt.Errorf("%s stake bounds %s..%s are invalid", g, lo, hi)
		}
		out[g] = StakeLimit{Min: lo, Max: hi}
	}
	return out, nil
}

// Check validates stake against the bounds of gameType.
func (l Limits) Check(gameType string, stake decimal.Decimal) error {
	lim, ok := l[gameType]
	if !ok {
		return game.ErrUnknownGame
	}
	if stake.LessThan(lim.Min) || stake.GreaterThan(lim.Max) || !stake.Equal(stake.Round(2)) {
		return &StakeLimitError{Game: gameType, Min: lim.Min, Max: lim.Max}
	}
	return nil
}
