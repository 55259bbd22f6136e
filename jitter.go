package upscale

import "math"

// SamplesPerPixel is the number of jitter phases per output pixel.
const SamplesPerPixel = 8

// Halton bases per axis.
const (
	haltonBaseX = 2
	haltonBaseY = 3
)

// JitterSequence is a regeneratable low-discrepancy 2D sequence of
// sub-pixel offsets sized to the upscaling factor.
//
// The sequence must stay in step with the backend history: it is
// regenerated only when the factor changes and reset only when upscaling is
// turned off.
type JitterSequence struct {
	offsets  []Vec2
	position int
	factor   Vec2
}

// Len returns the sequence length.
func (j *JitterSequence) Len() int {
	return len(j.offsets)
}

// Position returns the cursor.
func (j *JitterSequence) Position() int {
	return j.position
}

// Factor returns the upscaling factor the sequence was generated for.
func (j *JitterSequence) Factor() Vec2 {
	return j.factor
}

// Offsets returns a copy of the sequence.
func (j *JitterSequence) Offsets() []Vec2 {
	return append([]Vec2(nil), j.offsets...)
}

// SequenceLength returns ceil(SamplesPerPixel * factor.x * factor.y).
func SequenceLength(factor Vec2) int {
	n := int(math.Ceil(SamplesPerPixel * factor.X * factor.Y))
	return max(n, 1)
}

// Generate rebuilds the sequence for factor. It is a no-op when a sequence
// for the same factor already exists, leaving the cursor untouched. It
// reports whether the sequence was rebuilt.
func (j *JitterSequence) Generate(factor Vec2) bool {
	if len(j.offsets) > 0 && j.factor == factor {
		return false
	}
	n := SequenceLength(factor)
	xs := Halton(haltonBaseX, n)
	ys := Halton(haltonBaseY, n)
	j.offsets = make([]Vec2, n)
	for i := range j.offsets {
		j.offsets[i] = Vec2{X: xs[i], Y: ys[i]}
	}
	j.position = 0
	j.factor = factor
	Logger().Debug("upscale: jitter sequence generated", "length", n, "factor", factor)
	return true
}

// Jitter is the offset consumed for one frame.
type Jitter struct {
	// Pixel is the sub-pixel offset in [-0.5, 0.5).
	Pixel Vec2

	// Projection is the clip-space translation applied to the projection
	// matrix: -2 * Pixel / renderResolution.
	Projection Vec2

	// Backend is the offset reported to the backend. It is the negation of
	// the pixel shift applied to the projection; the backend negates it
	// again to match its motion-vector convention.
	Backend Vec2
}

// Apply consumes the offset at the cursor and advances it modulo the
// length. An empty sequence yields the zero Jitter.
func (j *JitterSequence) Apply(render Resolution) Jitter {
	if len(j.offsets) == 0 || render.IsZero() {
		return Jitter{}
	}
	p := j.offsets[j.position]
	j.position = (j.position + 1) % len(j.offsets)

	return Jitter{
		Pixel: p,
		Projection: Vec2{
			X: -2 * p.X / float64(render.Width),
			Y: -2 * p.Y / float64(render.Height),
		},
		// The projection moves by -p pixels.
		Backend: p,
	}
}

// Reset clears the sequence and cursor.
func (j *JitterSequence) Reset() {
	j.offsets = nil
	j.position = 0
	j.factor = Vec2{}
}

// Halton returns the first n values of the radical-inverse sequence in the
// given base, shifted by -0.5 into [-0.5, 0.5).
//
// It uses the incremental form: keep n/d, and at each step either start a
// new digit (d - n == 1) or carry into the largest power d/b^k below d - n.
func Halton(base, count int) []float64 {
	out := make([]float64, count)
	n, d := 0, 1
	for i := range out {
		x := d - n
		if x == 1 {
			n = 1
			d *= base
		} else {
			y := d / base
			for x <= y {
				y /= base
			}
			n = (base+1)*y - x
		}
		out[i] = float64(n)/float64(d) - 0.5
	}
	return out
}
