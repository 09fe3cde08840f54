package game

import "github.com/shopspring/decimal"

var (
	colors              = []string{"red", "green", "blue", "yellow"}
	colorPickMultiplier = decimal.NewFromInt(3)
)

type colorPick struct{}

func (colorPick) Name() string { return ColorPick }

func (colorPick) Validate(raw map[string]any) (map[string]any, error) {
	c, err := parseColor(raw)
	if err != nil {
		return nil, err
	}
	return map[string]any{"color": c}, nil
}

func (colorPick) Play(selection map[string]any, src Source) (Result, error) {
	c, err := parseColor(selection)
	if err != nil {
		return Result{}, err
	}
	i, err := src.Intn(len(colors))
	if err != nil {
		return Result{}, err
	}
	drawn := colors[i]
	outcome := map[string]any{"drawn": drawn}
	if drawn != c {
		return loss(outcome), nil
	}
	return Result{Outcome: outcome, Won: true, Multiplier: colorPickMultiplier}, nil
}

func parseColor(raw map[string]any) (string, error) {
	c, ok := toLowerString(raw["color"])
	if !ok {
		return "", selectionErr(ColorPick, "color must be a string")
	}
	for _, known := range colors {
		if c == known {
			return c, nil
		}
	}
	return "", selectionErr(ColorPick, "color must be one of red, green, blue, yellow")
}
