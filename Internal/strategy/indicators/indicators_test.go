package indicators

import (
	"math"
	"testing"
)

func TestRSIAt(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		index  int
		period int
		want   float64
	}{
		{
			name:   "insufficient history returns neutral",
			closes: []float64{100, 101, 102},
			index:  2,
			period: 14,
			want:   50,
		},
		{
			name:   "all gains returns 100",
			closes: []float64{100, 101, 102, 103, 104},
			index:  4,
			period: 3,
			want:   100,
		},
		{
			name:   "mixed gains and losses",
			closes: []float64{10, 11, 10.5, 11.5},
			index:  3,
			period: 2,
			// avgGain 0.5, avgLoss 0.25 -> RS 2 -> 100 - 100/3
			want: 100 - 100.0/3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSIAt(tt.closes, tt.index, tt.period)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RSIAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMovingAverageAt(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		index  int
		period int
		want   float64
	}{
		{
			name:   "degenerate single point before full window",
			closes: []float64{100, 102, 104},
			index:  1,
			period: 5,
			want:   102,
		},
		{
			name:   "full window mean",
			closes: []float64{100, 102, 104, 106},
			index:  3,
			period: 3,
			want:   104,
		},
		{
			name:   "exact boundary index",
			closes: []float64{100, 102, 104},
			index:  2,
			period: 3,
			want:   102,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverageAt(tt.closes, tt.index, tt.period)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MovingAverageAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateRSIRejectsBadInput(t *testing.T) {
	if _, err := CalculateRSI(nil, 14); err == nil {
		t.Errorf("CalculateRSI() should reject an empty series")
	}
	if _, err := CalculateRSI([]float64{1, 2, 3}, 0); err == nil {
		t.Errorf("CalculateRSI() should reject a non-positive period")
	}
}
