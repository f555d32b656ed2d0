package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// ProjectCorners projects four points onto axis and returns the covered interval.
// Written as a flat scalar sequence so the compiler can keep everything in registers.
func ProjectCorners(axis cp.Vector, pts *[4]cp.Vector) (lo, hi float64) {
	p0 := pts[0].X*axis.X + pts[0].Y*axis.Y
	p1 := pts[1].X*axis.X + pts[1].Y*axis.Y
	p2 := pts[2].X*axis.X + pts[2].Y*axis.Y
	p3 := pts[3].X*axis.X + pts[3].Y*axis.Y
	lo = math.Min(math.Min(p0, p1), math.Min(p2, p3))
	hi = math.Max(math.Max(p0, p1), math.Max(p2, p3))
	return lo, hi
}

// IntervalsOverlap treats touching endpoints as overlap.
func IntervalsOverlap(loA, hiA, loB, hiB float64) bool {
	return hiA >= loB && hiB >= loA
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MinAbs returns min(|a|, |b|).
func MinAbs(a, b float64) float64 {
	return math.Min(math.Abs(a), math.Abs(b))
}
