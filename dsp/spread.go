package dsp

// Spread does monstercat "smoothing" in place: every bin is raised to at
// least each other bin's value divided by factor once per bin of distance.
// factor must be >= 1.
//
// https://github.com/karlstav/cava/blob/master/cava.c#L157
func Spread(bins []float64, factor float64) {
	if factor < 1 {
		factor = 1
	}

	for idx := 1; idx < len(bins); idx++ {
		if v := bins[idx-1] / factor; v > bins[idx] {
			bins[idx] = v
		}
	}

	for idx := len(bins) - 2; idx >= 0; idx-- {
		if v := bins[idx+1] / factor; v > bins[idx] {
			bins[idx] = v
		}
	}
}
