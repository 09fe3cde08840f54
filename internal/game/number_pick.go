package game

import "github.com/shopspring/decimal"

const (
	numberPickMin = 1
	numberPickMax = 12
)

var numberPickMultiplier = decimal.NewFromInt(10)

type numberPick struct{}

func (numberPick) Name() string { return NumberPick }

func (numberPick) Validate(raw map[string]any) (map[string]any, error) {
	n, err := parseNumberPick(raw)
	if err != nil {
		return nil, err
	}
	return map[string]any{"number": n}, nil
}

func (numberPick) Play(selection map[string]any, src Source) (Result, error) {
	n, err := parseNumberPick(selection)
	if err != nil {
		return Result{}, err
	}
	r, err := src.Intn(numberPickMax - numberPickMin + 1)
	if err != nil {
		return Result{}, err
	}
	drawn := numberPickMin + r
	outcome := map[string]any{"drawn": drawn}
	if drawn != n {
		return loss(outcome), nil
	}
	return Result{Outcome: outcome, Won: true, Multiplier: numberPickMultiplier}, nil
}

func parseNumberPick(raw map[string]any) (int, error) {
	n, ok := toInt(raw["number"])
	if !ok {
		return 0, selectionErr(NumberPick, "number must be an integer")
	}
	if n < numberPickMin || n > numberPickMax {
		return 0, selectionErr(NumberPick, "number must be between 1 and 12")
	}
	return n, nil
}
