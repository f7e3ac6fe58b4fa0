package components

import "math"

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// fft computes the in-place radix-2 Cooley-Tukey transform. len(re) must be
// a power of two and len(im) must match.
func fft(re, im []float64) {
	n := len(re)
	if n < 2 {
		return
	}

	// bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			half := length / 2
			for k := 0; k < half; k++ {
				evenRe, evenIm := re[start+k], im[start+k]
				oddRe := re[start+k+half]*curRe - im[start+k+half]*curIm
				oddIm := re[start+k+half]*curIm + im[start+k+half]*curRe
				re[start+k], im[start+k] = evenRe+oddRe, evenIm+oddIm
				re[start+k+half], im[start+k+half] = evenRe-oddRe, evenIm-oddIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}

// hannWindow returns the n-point Hann window.
func hannWindow(n int) []float64 {
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return window
}

// magnitudeSpectrum returns the single-sided magnitude spectrum of one
// windowed frame, zero-padded to a power of two.
func magnitudeSpectrum(samples, window []float64) []float64 {
	size := nextPow2(len(samples))
	re := make([]float64, size)
	im := make([]float64, size)
	for i, sample := range samples {
		re[i] = sample * window[i]
	}
	fft(re, im)
	half := size/2 + 1
	mags := make([]float64, half)
	for i := 0; i < half; i++ {
		mags[i] = math.Hypot(re[i], im[i])
	}
	return mags
}
