package game

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SideYes = "yes"
	SideNo  = "no"
)

// PropositionPick is a parsed proposition selection.
type PropositionPick struct {
	MatchID string
	Side    string
}

// ParseProposition validates a raw {"match_id", "side"} selection.
func ParseProposition(raw map[string]any) (PropositionPick, error) {
	matchID, _ := raw["match_id"].(string)
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return PropositionPick{}, selectionErr(Proposition, "match_id is required")
	}
	side, ok := toLowerString(raw["side"])
	if !ok || !ValidSide(side) {
		return PropositionPick{}, selectionErr(Proposition, "side must be yes or no")
	}
	return PropositionPick{MatchID: matchID, Side: side}, nil
}

func ValidSide(side string) bool {
	return side == SideYes || side == SideNo
}

// PropositionSelection is the stored selection. The odds of the chosen side
// are captured here at placement so later odds changes do not affect payout.
func PropositionSelection(p PropositionPick, odds decimal.Decimal) map[string]any {
	return map[string]any{
		"match_id": p.MatchID,
		"side":     p.Side,
		"odds":     odds.StringFixed(2),
	}
}

// ResolveProposition settles a stored selection against the match result.
func ResolveProposition(selection map[string]any, result string) (Result, error) {
	side, ok := toLowerString(selection["side"])
	if !ok || !ValidSide(side) {
		return Result{}, selectionErr(Proposition, "stored side is invalid")
	}
	rawOdds, _ := selection["odds"].(string)
	odds, err := decimal.NewFromString(rawOdds)
	if err != nil || odds.Sign() <= 0 {
		return Result{}, selectionErr(Proposition, "stored odds are invalid")
	}
	outcome := map[string]any{"result": result, "side": side}
	if side != result {
		return loss(outcome), nil
	}
	return Result{Outcome: outcome, Won: true, Multiplier: odds}, nil
}
