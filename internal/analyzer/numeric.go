package analyzer

import (
	"math/big"
	"strconv"
)

func parseBigInt(text string) (*big.Int, bool) {
	return new(big.Int).SetString(text, 10)
}

func parseFloat(text string) (float64, bool) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
