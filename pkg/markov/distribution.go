package markov

// outcome is one entry of a distribution, kept in first-seen order.
type outcome[T comparable] struct {
	value T
	prob  float64
}

// distribution is a running probability estimate over observed values. It never
// stores raw counts: each observation re-weights the existing probabilities by
// the previous total and renormalizes, which matches count/total up to
// floating-point rounding.
type distribution[T comparable] struct {
	outcomes []outcome[T]
	total    int
}

// observe records one more occurrence of v.
func (d *distribution[T]) observe(v T) {
	n := float64(d.total)
	matched := false
	for i := range d.outcomes {
		raw := d.outcomes[i].prob * n
		if d.outcomes[i].value == v {
			raw++
			matched = true
		}
		d.outcomes[i].prob = raw / (n + 1)
	}
	d.total++
	if !matched {
		d.outcomes = append(d.outcomes, outcome[T]{value: v, prob: 1 / float64(d.total)})
	}
}

// pick returns the first outcome whose cumulative probability reaches u, or the
// last outcome if rounding leaves u above every cumulative sum. It reports false
// only when the distribution is empty.
func (d *distribution[T]) pick(u float64) (T, bool) {
	var zero T
	if len(d.outcomes) == 0 {
		return zero, false
	}
	var cumulative float64
	for _, o := range d.outcomes {
		cumulative += o.prob
		if cumulative >= u {
			return o.value, true
		}
	}
	return d.outcomes[len(d.outcomes)-1].value, true
}

// sum is the total probability mass, 1 within rounding for any non-empty distribution.
func (d *distribution[T]) sum() float64 {
	var s float64
	for _, o := range d.outcomes {
		s += o.prob
	}
	return s
}
