package betting

import (
	"errors"
	"testing"

	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/game"

	"github.com/shopspring/decimal"
)

func TestLimitsCheck(t *testing.T) {
	l := DefaultLimits()
	cases := []struct {
		game  string
		stake string
		ok    bool
	}{
		{game.NumberPick, "5.00", true},
		{game.NumberPick, "500.00", true},
		{game.NumberPick, "4.99", false},
		{game.NumberPick, "500.01", false},
		{game.TriplePick, "2", true},
		{game.TriplePick, "101", false},
		{game.Proposition, "9.99", false},
		{game.Proposition, "1000", true},
		{game.ColorPick, "10.001", false},
	}
	for _, tc := range cases {
		err := l.Check(tc.game, decimal.RequireFromString(tc.stake))
		if tc.ok && err != nil {
			t.Fatalf("%s %s: unexpected error %v", tc.game, tc.stake, err)
		}
		if !tc.ok {
			var limErr *StakeLimitError
			if !errors.As(err, &limErr) || !errors.Is(err, ErrInvalidStakeAmount) {
				t.Fatalf("%s %s: expected StakeLimitError, got %v", tc.game, tc.stake, err)
			}
		}
	}
	if err := l.Check("roulette", decimal.NewFromInt(10)); !errors.Is(err, game.ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
}

func TestLimitsFromConfig(t *testing.T) {
	cfg, err := config.LoadLimits()
	if err != nil {
		t.Fatalf("load limits: %v", err)
	}
	l, err := LimitsFromConfig(cfg)
	if err != nil {
		t.Fatalf("parse limits: %v", err)
	}
	def := DefaultLimits()
	for g, want := range def {
		got := l[g]
		if !got.Min.Equal(want.Min) || !got.Max.Equal(want.Max) {
			t.Fatalf("%s limits = %+v, want %+v", g, got, want)
		}
	}

	cfg.ColorPickMin = "600"
	if _, err := LimitsFromConfig(cfg); err == nil {
		t.Fatal("expected error when min exceeds max")
	}
	cfg.ColorPickMin = "abc"
	if _, err := LimitsFromConfig(cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPayoutRounding(t *testing.T) {
	cases := map[[2]string]string{
		{"50.00", "10"}:  "500.00",
		{"10.00", "1.85"}: "18.50",
		{"3.33", "1.85"}:  "6.16",
		{"2.15", "2.5"}:   "5.38",
	}
	for in, want := range cases {
		got := Payout(decimal.RequireFromString(in[0]), decimal.RequireFromString(in[1]))
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("Payout(%s x %s) = %s, want %s", in[0], in[1], got, want)
		}
	}
}
