package indicators

import "fmt"

// RSIAt computes a Wilder-style RSI over the `period` closes ending at
// `index`. Insufficient history is not an error: anything before the first
// full period returns the neutral value 50.
func RSIAt(closes []float64, index, period int) float64 {
	if index < period {
		return 50
	}

	gains := 0.0
	losses := 0.0
	for i := index - period + 1; i <= index; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MovingAverageAt is the simple mean of the last `period` closes ending at
// `index`. With fewer than `period` closes available it degrades to the
// close at `index` rather than failing.
func MovingAverageAt(closes []float64, index, period int) float64 {
	if index < period-1 {
		return closes[index]
	}

	sum := 0.0
	for i := index - period + 1; i <= index; i++ {
		sum += closes[i]
	}
	return sum / float64(period)
}

// CalculateRSI returns the RSI series for every index of closes. Used by
// display code that wants the whole curve rather than a point value.
func CalculateRSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("invalid RSI period %d", period)
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("no closing prices provided")
	}

	values := make([]float64, len(closes))
	for i := range closes {
		values[i] = RSIAt(closes, i, period)
	}
	return values, nil
}
