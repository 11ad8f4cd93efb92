package game

// easeOutQuad maps linear progress t in [0,1] to a decelerating curve.
func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

// tweenProgress is elapsed/duration clamped to [0,1]. Both are in seconds.
func tweenProgress(elapsed, duration float64) float64 {
	if duration <= 0 || elapsed >= duration-timeEpsilon {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return elapsed / duration
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

// timeEpsilon absorbs float drift when summing per-tick deltas.
const timeEpsilon = 1e-9
