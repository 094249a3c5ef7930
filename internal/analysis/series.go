// Package analysis extracts equilibrium statistics from sampled
// observable series and particle configurations: autocorrelation and
// effective sample size for correlated Monte Carlo data, block-averaged
// error bars, and the radial distribution function.
package analysis

import "math"

func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	mean := Mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(data)-1)
}

// Autocorrelation computes the normalised autocorrelation function of a
// series via the Wiener-Khinchin theorem, zero-padding to a power of
// two. The result has the same length as the input with result[0] == 1.
func Autocorrelation(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	mean := Mean(data)
	padded := make([]float64, nextPow2(2*n))
	for i, v := range data {
		padded[i] = v - mean
	}

	spectrum := FFT(padded)
	power := make([]float64, len(spectrum))
	for i, c := range spectrum {
		power[i] = real(c)*real(c) + imag(c)*imag(c)
	}

	acf := inverseFFTReal(power)

	result := make([]float64, n)
	if acf[0] == 0 {
		result[0] = 1
		return result
	}
	for i := range result {
		result[i] = acf[i] / acf[0]
	}
	return result
}

// inverseFFTReal computes the real part of the inverse transform of a
// real-valued spectrum. For real input IFFT(x) = conj(FFT(x))/n, so the
// real part is just the forward transform's real part over n.
func inverseFFTReal(power []float64) []float64 {
	n := len(power)
	forward := FFT(power)
	out := make([]float64, n)
	for i := range out {
		out[i] = real(forward[i]) / float64(n)
	}
	return out
}

// IntegratedAutocorrelationTime estimates tau_int with the standard
// self-consistent window: summation stops at the first lag exceeding
// 6*tau. Returns at least 1 (uncorrelated samples).
func IntegratedAutocorrelationTime(data []float64) float64 {
	acf := Autocorrelation(data)
	if len(acf) < 2 {
		return 1
	}

	tau := 0.5
	for t := 1; t < len(acf); t++ {
		tau += acf[t]
		if float64(t) >= 6*tau {
			break
		}
	}
	if tau < 0.5 {
		tau = 0.5
	}
	return 2 * tau
}

// EffectiveSamples is the number of statistically independent samples
// in a correlated series.
func EffectiveSamples(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return float64(len(data)) / IntegratedAutocorrelationTime(data)
}

// BlockError estimates the standard error of the mean by block
// averaging: the series is cut into nBlocks contiguous blocks and the
// block means treated as independent. Blocks longer than the
// correlation time make this unbiased.
func BlockError(data []float64, nBlocks int) float64 {
	if nBlocks < 2 || len(data) < nBlocks {
		return 0
	}

	blockLen := len(data) / nBlocks
	means := make([]float64, nBlocks)
	for b := 0; b < nBlocks; b++ {
		means[b] = Mean(data[b*blockLen : (b+1)*blockLen])
	}

	return math.Sqrt(Variance(means) / float64(nBlocks))
}

// Summary is the digest the analyze command prints for one observable
// series.
type Summary struct {
	Mean      float64
	Variance  float64
	Tau       float64
	Effective float64
	Error     float64
}

// Summarize discards the first burnIn fraction of the series and
// computes equilibrium statistics over the remainder.
func Summarize(data []float64, burnIn float64) Summary {
	if burnIn < 0 {
		burnIn = 0
	}
	if burnIn > 0.9 {
		burnIn = 0.9
	}
	tail := data[int(float64(len(data))*burnIn):]

	return Summary{
		Mean:      Mean(tail),
		Variance:  Variance(tail),
		Tau:       IntegratedAutocorrelationTime(tail),
		Effective: EffectiveSamples(tail),
		Error:     BlockError(tail, 10),
	}
}
