package plot

import "math"

// MaxYTicks bounds the labelled values on the value axis.
const MaxYTicks = 8

// NiceTicks returns multiples of a 1, 2 or 5 times a power of ten step that lie inside
// [lo, hi], using at most n of them. A collapsed domain yields the single value lo.
func NiceTicks(lo, hi float64, n int) []float64 {
	if n < 1 || math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return []float64{lo}
	}
	step := niceStep((hi - lo) / float64(n))
	for tickCount(lo, hi, step) > n {
		step = nextNiceStep(step)
	}
	first := math.Ceil(lo/step - 1e-9)
	last := math.Floor(hi/step + 1e-9)
	out := make([]float64, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		out = append(out, round9(i*step))
	}
	return out
}

// niceStep rounds raw to 1, 2, 5 or 10 times its power of ten, splitting at the geometric means.
func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	norm := raw / mag
	switch {
	case norm >= math.Sqrt(50):
		return 10 * mag
	case norm >= math.Sqrt(10):
		return 5 * mag
	case norm >= math.Sqrt(2):
		return 2 * mag
	}
	return mag
}

func nextNiceStep(step float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(step)+1e-9))
	norm := math.Round(step / mag)
	switch {
	case norm < 2:
		return 2 * mag
	case norm < 5:
		return 5 * mag
	}
	return 10 * mag
}

func tickCount(lo, hi, step float64) int {
	return int(math.Floor(hi/step+1e-9)-math.Ceil(lo/step-1e-9)) + 1
}

// round9 strips float noise such as 0.30000000000000004.
func round9(v float64) float64 { return math.Round(v*1e9) / 1e9 }
