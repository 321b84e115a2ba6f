// Package kpi derives safety-performance indicators from reconciled
// incidents and exposure denominators.
package kpi

import "math"

// Rate factors.
const (
	FactorTRIR     = 200_000
	FactorLTIF     = 1_000_000
	FactorDART     = 200_000
	FactorSeverity = 1_000
	FactorFAR      = 100_000_000
	FactorPSE      = 200_000
	FactorIFAT     = 1_000_000
	// FactorIncidence expresses the regulatory incidence rate per mille.
	FactorIncidence = 1_000

	// headcountHoursPerMonth is the monthly hours assumed per worker when
	// estimating average headcount.
	headcountHoursPerMonth = 200
)

// Rate is (numerator * factor) / denominator rounded to two decimals. A zero,
// negative or missing denominator yields exactly 0 so "no data" renders as a
// zero rate.
func Rate(numerator float64, factor float64, denominator float64) float64 {
	if denominator <= 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0
	}
	v := numerator * factor / denominator
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
