package series

// EdgePolicy selects how Interpolate fills leading/trailing non-finite runs.
type EdgePolicy int

const (
	// EdgeNearest fills edges with the nearest finite value.
	EdgeNearest EdgePolicy = iota
	// EdgeValue fills edges with a caller-provided constant.
	EdgeValue
)

// Interpolate linearly fills interior non-finite runs between bracketing finite
// values, per dimension. Leading/trailing runs use edgeValue when edge is
// EdgeValue, otherwise the nearest finite value. A dimension that is entirely
// non-finite is filled uniformly with edgeValue.
func (s *Series) Interpolate(edge EdgePolicy, edgeValue float64) (*Series, error) {
	out := s.Copy()
	for d := range out.y {
		interpolateDim(out.y[d], edge, edgeValue)
	}
	return out, nil
}

func interpolateDim(y []float64, edge EdgePolicy, edgeValue float64) {
	n := len(y)
	firstFinite, lastFinite := -1, -1
	for i, v := range y {
		if isFinite(v) {
			if firstFinite < 0 {
				firstFinite = i
			}
			lastFinite = i
		}
	}
	if firstFinite < 0 {
		for i := range y {
			y[i] = edgeValue
		}
		return
	}

	// leading run
	for i := 0; i < firstFinite; i++ {
		if edge == EdgeValue {
			y[i] = edgeValue
		} else {
			y[i] = y[firstFinite]
		}
	}
	// trailing run
	for i := lastFinite + 1; i < n; i++ {
		if edge == EdgeValue {
			y[i] = edgeValue
		} else {
			y[i] = y[lastFinite]
		}
	}

	// interior gaps: linear interpolation between bracketing finite values
	i := firstFinite
	for i < lastFinite {
		if isFinite(y[i+1]) {
			i++
			continue
		}
		left := i
		right := i + 1
		for !isFinite(y[right]) {
			right++
		}
		span := right - left
		for k := left + 1; k < right; k++ {
			frac := float64(k-left) / float64(span)
			y[k] = y[left] + frac*(y[right]-y[left])
		}
		i = right
	}
}
