package matching

import "math"

// Lex packs a tuple of non-negative integers into one int64 cost so that
// sums over at most terms tuples still compare lexicographically.
type Lex struct {
	mult []int64
}

// NewLex builds an encoder for levels with the given inclusive maxima,
// most significant first. It reports false when the encoding of terms
// tuples would not fit comfortably in an int64.
func NewLex(terms int, maxima ...int64) (Lex, bool) {
	if terms < 1 {
		terms = 1
	}
	// Leave headroom for path costs and potentials in the solver.
	const limit = math.MaxInt64 / 4

	mult := make([]int64, len(maxima))
	var lowerSum int64 // largest possible sum of all less significant levels
	for i := len(maxima) - 1; i >= 0; i-- {
		m := int64(1)
		if lowerSum > 0 {
			if lowerSum >= limit {
				return Lex{}, false
			}
			m = lowerSum + 1
		}
		mult[i] = m
		levelMax := maxima[i]
		if levelMax < 0 {
			levelMax = 0
		}
		add, ok := mulCheck(int64(terms), levelMax, m)
		if !ok || lowerSum > limit-add {
			return Lex{}, false
		}
		lowerSum += add
	}
	return Lex{mult: mult}, true
}

// Encode returns the packed cost of values, one per level.
func (l Lex) Encode(values ...int64) int64 {
	var c int64
	for i, v := range values {
		if i >= len(l.mult) {
			break
		}
		c += v * l.mult[i]
	}
	return c
}

// Levels returns the number of levels the encoder was built for.
func (l Lex) Levels() int { return len(l.mult) }

func mulCheck(a, b, c int64) (int64, bool) {
	if a == 0 || b == 0 || c == 0 {
		return 0, true
	}
	const limit = math.MaxInt64 / 4
	if a > limit/b {
		return 0, false
	}
	ab := a * b
	if ab > limit/c {
		return 0, false
	}
	return ab * c, true
}
