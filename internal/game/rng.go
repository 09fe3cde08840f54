package game

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Source yields uniform integers in [0, n).
type Source interface {
	Intn(n int) (int, error)
}

// CryptoSource draws from crypto/rand. It is the only Source used outside
// tests.
type CryptoSource struct{}

func (CryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("game: Intn bound must be positive")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// drawDistinct returns k distinct values from [lo, hi] using a partial
// Fisher-Yates shuffle.
func drawDistinct(src Source, lo, hi, k int) ([]int, error) {
	pool := make([]int, hi-lo+1)
	for i := range pool {
		pool[i] = lo + i
	}
	for i := 0; i < k; i++ {
		j, err := src.Intn(len(pool) - i)
		if err != nil {
			return nil, err
		}
		j += i
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := make([]int, k)
	copy(out, pool[:k])
	return out, nil
}
