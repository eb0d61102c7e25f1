package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/MJE43/antwalk/internal/sim"
)

// writeReport prints the mean crossing time to three decimals, plus the
// skipped count when any trial failed.
func writeReport(w io.Writer, s sim.Summary) error {
	mean, err := formatFixed(s.Mean, 3)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Average time to get to the food is %s\n", mean); err != nil {
		return err
	}

	if s.Skipped > 0 {
		if _, err := fmt.Fprintf(w, "Skipped %d of %d trials\n", s.Skipped, s.Evaluated); err != nil {
			return err
		}
	}
	return nil
}

// formatFixed rounds the exact binary value of f half to even, matching %.Nf.
func formatFixed(f float64, places int32) (string, error) {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		return "", fmt.Errorf("cannot format non-finite mean %v", f)
	}

	// A dyadic fraction 1/2^k has exactly k decimal digits.
	exact, err := decimal.NewFromString(r.FloatString(r.Denom().BitLen() - 1))
	if err != nil {
		return "", fmt.Errorf("failed to convert mean %v: %w", f, err)
	}
	return exact.StringFixedBank(places), nil
}
