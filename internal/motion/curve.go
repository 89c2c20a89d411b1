package motion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// Extrapolation decides what a Curve returns outside its breakpoints.
type Extrapolation int

const (
	// ExtrapolateClamp holds the boundary output.
	ExtrapolateClamp Extrapolation = iota
	// ExtrapolateExtend continues the slope of the boundary segment.
	ExtrapolateExtend
	// ExtrapolateError rejects the value with a DomainError.
	ExtrapolateError
)

func (e Extrapolation) String() string {
	switch e {
	case ExtrapolateClamp:
		return "clamp"
	case ExtrapolateExtend:
		return "extend"
	case ExtrapolateError:
		return "error"
	default:
		return fmt.Sprintf("extrapolation(%d)", int(e))
	}
}

// ParseExtrapolation accepts "clamp", "extend" or "error".
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clamp", "":
		return ExtrapolateClamp, nil
	case "extend":
		return ExtrapolateExtend, nil
	case "error":
		return ExtrapolateError, nil
	default:
		return 0, fmt.Errorf("unknown extrapolation %q", s)
	}
}

func (e Extrapolation) MarshalYAML() (interface{}, error) {
	return e.String(), nil
}

func (e *Extrapolation) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseExtrapolation(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Curve maps values through ordered breakpoints onto outputs. It is validated
// once by NewCurve and is read-only afterwards.
type Curve struct {
	in, out     []float64
	left, right Extrapolation
	descending  bool
	easing      ease.TweenFunc
}

// NewCurve builds a piecewise linear curve. in must hold at least two strictly
// monotonic (ascending or descending) finite values and out must match its
// length. left applies beyond in[0], right beyond in[len(in)-1].
func NewCurve(in, out []float64, left, right Extrapolation) (*Curve, error) {
	if len(in) < 2 {
		return nil, &DomainError{Reason: fmt.Sprintf("need at least 2 breakpoints, got %d", len(in))}
	}
	if len(in) != len(out) {
		return nil, &DomainError{Reason: fmt.Sprintf("%d breakpoints but %d outputs", len(in), len(out))}
	}
	for i := range in {
		if !finite(in[i]) || !finite(out[i]) {
			return nil, &DomainError{Reason: fmt.Sprintf("non-finite value at index %d", i)}
		}
	}

	descending := in[1] < in[0]
	for i := 1; i < len(in); i++ {
		if (!descending && in[i] <= in[i-1]) || (descending && in[i] >= in[i-1]) {
			return nil, &DomainError{Reason: fmt.Sprintf("breakpoints not strictly monotonic at index %d", i)}
		}
	}

	c := &Curve{
		in:         append([]float64(nil), in...),
		out:        append([]float64(nil), out...),
		left:       left,
		right:      right,
		descending: descending,
	}
	return c, nil
}

// NewClampedCurve is NewCurve with clamping on both sides.
func NewClampedCurve(in, out []float64) (*Curve, error) {
	return NewCurve(in, out, ExtrapolateClamp, ExtrapolateClamp)
}

// WithEasing returns a copy of the curve whose in-segment progress is reshaped
// by fn. Extrapolated values stay linear. A nil fn means linear.
func (c *Curve) WithEasing(fn ease.TweenFunc) *Curve {
	cp := *c
	cp.easing = fn
	return &cp
}

// At evaluates the curve at v.
func (c *Curve) At(v float64) (float64, error) {
	if math.IsNaN(v) {
		return 0, &DomainError{Reason: "value is NaN"}
	}

	n := len(c.in)
	switch {
	case c.beyond(v, c.in[0], true):
		return c.extrapolate(v, 0, 0, c.left)
	case c.beyond(v, c.in[n-1], false):
		return c.extrapolate(v, n-2, n-1, c.right)
	}

	// index of the first breakpoint at or past v in curve order
	i := sort.Search(n, func(k int) bool {
		if c.descending {
			return c.in[k] <= v
		}
		return c.in[k] >= v
	})
	if c.in[i] == v {
		return c.out[i], nil
	}

	seg := i - 1
	t := (v - c.in[seg]) / (c.in[seg+1] - c.in[seg])
	if c.easing != nil {
		t = float64(c.easing(float32(t), 0, 1, 1))
	}
	return lerp(c.out[seg], c.out[seg+1], t), nil
}

// Domain returns the first and last breakpoints.
func (c *Curve) Domain() (first, last float64) {
	return c.in[0], c.in[len(c.in)-1]
}

// beyond reports whether v lies outside the curve past the given edge.
func (c *Curve) beyond(v, edge float64, leading bool) bool {
	before := v < edge
	if c.descending {
		before = v > edge
	}
	if leading {
		return before
	}
	after := v > edge
	if c.descending {
		after = v < edge
	}
	return after
}

// extrapolate handles v past breakpoint edge, continuing segment seg.
func (c *Curve) extrapolate(v float64, seg, edge int, policy Extrapolation) (float64, error) {
	switch policy {
	case ExtrapolateClamp:
		return c.out[edge], nil
	case ExtrapolateExtend:
		t := (v - c.in[seg]) / (c.in[seg+1] - c.in[seg])
		return c.out[seg] + (c.out[seg+1]-c.out[seg])*t, nil
	default:
		first, last := c.Domain()
		return 0, &DomainError{Reason: fmt.Sprintf("outside [%g, %g]", first, last), Value: v}
	}
}

// Interpolate validates and evaluates a curve in one call, using policy on
// both sides. Prefer NewCurve when the same breakpoints are evaluated often.
func Interpolate(v float64, in, out []float64, policy Extrapolation) (float64, error) {
	c, err := NewCurve(in, out, policy, policy)
	if err != nil {
		return 0, err
	}
	return c.At(v)
}

// lerp is exact at t=0 and t=1.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
