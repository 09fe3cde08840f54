package game

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	triplePickMin   = 1
	triplePickMax   = 36
	triplePickCount = 3
)

// Multiplier by number of matches between the selection and the draw.
var triplePickMultipliers = map[int]decimal.Decimal{
	3: decimal.NewFromInt(800),
	2: decimal.NewFromInt(10),
	1: decimal.NewFromInt(2),
}

type triplePick struct{}

func (triplePick) Name() string { return TriplePick }

func (triplePick) Validate(raw map[string]any) (map[string]any, error) {
	nums, err := parseTriple(raw)
	if err != nil {
		return nil, err
	}
	return map[string]any{"numbers": nums}, nil
}

func (triplePick) Play(selection map[string]any, src Source) (Result, error) {
	picked, err := parseTriple(selection)
	if err != nil {
		return Result{}, err
	}
	drawn, err := drawDistinct(src, triplePickMin, triplePickMax, triplePickCount)
	if err != nil {
		return Result{}, err
	}
	sort.Ints(drawn)
	matches := CountMatches(picked, drawn)
	outcome := map[string]any{"drawn": drawn, "matches": matches}
	mult, ok := triplePickMultipliers[matches]
	if !ok {
		return loss(outcome), nil
	}
	return Result{Outcome: outcome, Won: true, Multiplier: mult}, nil
}

// CountMatches returns the size of the intersection of two sets of numbers.
func CountMatches(picked, drawn []int) int {
	set := make(map[int]struct{}, len(drawn))
	for _, n := range drawn {
		set[n] = struct{}{}
	}
	count := 0
	for _, n := range picked {
		if _, ok := set[n]; ok {
			count++
		}
	}
	return count
}

func parseTriple(raw map[string]any) ([]int, error) {
	var items []any
	switch v := raw["numbers"].(type) {
	case []any:
		items = v
	case []int:
		for _, n := range v {
			items = append(items, n)
		}
	default:
		return nil, selectionErr(TriplePick, "numbers must be a list")
	}
	if len(items) != triplePickCount {
		return nil, selectionErr(TriplePick, "exactly 3 numbers are required")
	}
	seen := map[int]bool{}
	out := make([]int, 0, triplePickCount)
	for _, item := range items {
		n, ok := toInt(item)
		if !ok || n < triplePickMin || n > triplePickMax {
			return nil, selectionErr(TriplePick, "numbers must be integers between 1 and 36")
		}
		if seen[n] {
			return nil, selectionErr(TriplePick, "numbers must be distinct")
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}
