package config

import (
	"os"
	"strconv"
	"sync"
)

var (
	txRetry     int
	txRetryOnce sync.Once
)

// GetTxRetry is the number of attempts WithTxRetry makes. ODE_TX_RETRY can raise it,
// it never goes below 3. The environment is read once.
func GetTxRetry() int {
	txRetryOnce.Do(func() {
		txRetry = parseTxRetry(os.Getenv("ODE_TX_RETRY"))
	})

	return txRetry
}

func parseTxRetry(value string) int {
	count, err := strconv.ParseInt(value, 10, 32)
	if err != nil || count < 3 {
		return 3
	}

	return int(count)
}
