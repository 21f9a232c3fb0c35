package rng

// Fixed returns a source that always yields v.
// IntN maps v onto [0, n) the same way a uniform float would.
func Fixed(v float64) *Sequence {
	return NewSequence(v)
}

// Sequence replays a scripted list of values, wrapping around at the end.
type Sequence struct {
	vals []float64
	pos  int
}

// NewSequence creates a scripted source. Values outside [0, 1) are clamped.
func NewSequence(vals ...float64) *Sequence {
	if len(vals) == 0 {
		vals = []float64{0}
	}
	s := &Sequence{vals: make([]float64, len(vals))}
	for i, v := range vals {
		switch {
		case v < 0:
			v = 0
		case v >= 1:
			v = 0.999999999
		}
		s.vals[i] = v
	}
	return s
}

// Float64 implements Source.
func (s *Sequence) Float64() float64 {
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	return v
}

// IntN implements Source.
func (s *Sequence) IntN(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to IntN")
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Draws returns how many values have been consumed.
func (s *Sequence) Draws() int { return s.pos }
