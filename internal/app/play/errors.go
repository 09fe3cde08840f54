package play

import "fmt"

// SettleError reports a bet whose stake was taken but whose draw or
// settlement failed. The bet stays pending and can be refunded.
type SettleError struct {
	BetID string
	Err   error
}

func (e *SettleError) Error() string {
	return fmt.Sprintf("bet %s placed but not settled: %v", e.BetID, e.Err)
}

func (e *SettleError) Unwrap() error {
	return e.Err
}
