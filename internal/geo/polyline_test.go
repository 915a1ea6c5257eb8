package geo

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

func line(f LocalFrame, pts ...r2.Point) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = f.Unproject(p)
	}
	return ls
}

func TestPathAndStraightness(t *testing.T) {
	f := NewLocalFrame(paris)

	straight := line(f, r2.Point{}, r2.Point{X: 1}, r2.Point{X: 2}, r2.Point{X: 3})
	if got := PathLengthMeters(straight); math.Abs(got-3) > 1e-3 {
		t.Errorf("PathLengthMeters = %v, want 3", got)
	}
	s, ok := Straightness(straight)
	if !ok || math.Abs(s-1) > 1e-6 {
		t.Errorf("Straightness = %v (%v), want 1", s, ok)
	}

	bent := line(f, r2.Point{}, r2.Point{X: 1}, r2.Point{X: 1, Y: 1})
	s, ok = Straightness(bent)
	if !ok || math.Abs(s-math.Sqrt2/2) > 1e-4 {
		t.Errorf("Straightness(L shape) = %v, want %v", s, math.Sqrt2/2)
	}

	_, ok = Straightness(orb.LineString{paris, paris})
	if ok {
		t.Error("zero-length path should not report straightness")
	}
}

func TestCumulativeTurnDegrees(t *testing.T) {
	f := NewLocalFrame(paris)

	square := line(f, r2.Point{}, r2.Point{X: 1}, r2.Point{X: 1, Y: 1}, r2.Point{Y: 1}, r2.Point{})
	if got := CumulativeTurnDegrees(square); math.Abs(got-270) > 0.01 {
		t.Errorf("open square turn = %v, want 270", got)
	}

	// repeated vertices do not add spurious turns
	dup := line(f, r2.Point{}, r2.Point{X: 1}, r2.Point{X: 1}, r2.Point{X: 2})
	if got := CumulativeTurnDegrees(dup); got > 1e-6 {
		t.Errorf("straight line with duplicate vertex turn = %v, want 0", got)
	}

	if got := CumulativeTurnDegrees(line(f, r2.Point{}, r2.Point{X: 1})); got != 0 {
		t.Errorf("single segment turn = %v, want 0", got)
	}
}

func TestBoundsMeters(t *testing.T) {
	f := NewLocalFrame(paris)
	ls := line(f, r2.Point{}, r2.Point{X: 2, Y: 1})
	w, h := BoundsMeters(ls)
	if math.Abs(w-2) > 1e-3 || math.Abs(h-1) > 1e-3 {
		t.Errorf("BoundsMeters = %v x %v, want 2 x 1", w, h)
	}
}

func TestPointLineDistance(t *testing.T) {
	d, ok := PointLineDistance(r2.Point{X: 5, Y: 0.3}, r2.Point{}, r2.Point{X: 1})
	if !ok || math.Abs(d-0.3) > 1e-12 {
		t.Errorf("PointLineDistance = %v (%v), want 0.3", d, ok)
	}
	if _, ok := PointLineDistance(r2.Point{X: 1}, r2.Point{}, r2.Point{}); ok {
		t.Error("degenerate line should report !ok")
	}
}

func TestChordBearingDegenerate(t *testing.T) {
	if _, ok := ChordBearing(orb.LineString{paris, {2.36, 48.86}, paris}); ok {
		t.Error("closed ring chord should be degenerate")
	}
}

func TestOrientedEnvelope_RotatedRectangle(t *testing.T) {
	f := NewLocalFrame(paris)
	const length, width, heading = 2.32, 1.60, 30.0

	h := heading * math.Pi / 180
	u := r2.Point{X: math.Sin(h), Y: math.Cos(h)} // along heading
	v := u.Ortho()
	corner := func(a, b float64) r2.Point { return u.Mul(a).Add(v.Mul(b)) }

	ls := line(f,
		corner(0, 0),
		corner(length/2, 0),
		corner(length, 0),
		corner(length, width),
		corner(0, width),
		corner(0, width/2),
		corner(0, 0),
	)

	env := OrientedEnvelope(ls)
	if math.Abs(env.Length-length) > 0.005 || math.Abs(env.Width-width) > 0.005 {
		t.Errorf("envelope = %.3f x %.3f, want %.2f x %.2f", env.Length, env.Width, length, width)
	}
	if OrientationDifference(env.HeadingDeg, heading) > 0.1 {
		t.Errorf("heading = %v, want %v", env.HeadingDeg, heading)
	}
	center := f.Project(env.Center)
	if center.Sub(corner(length/2, width/2)).Norm() > 0.005 {
		t.Errorf("center = %v, want %v", center, corner(length/2, width/2))
	}
}

func TestOrientedEnvelope_Degenerate(t *testing.T) {
	f := NewLocalFrame(paris)

	seg := line(f, r2.Point{}, r2.Point{X: 1, Y: 1}, r2.Point{X: 2, Y: 2})
	env := OrientedEnvelope(seg)
	if math.Abs(env.Length-2*math.Sqrt2) > 1e-3 || env.Width > 1e-6 {
		t.Errorf("collinear envelope = %v x %v", env.Length, env.Width)
	}

	point := OrientedEnvelope(orb.LineString{paris, paris})
	if point.Length != 0 || point.Width != 0 {
		t.Errorf("point envelope = %v x %v, want 0 x 0", point.Length, point.Width)
	}

	if empty := OrientedEnvelope(nil); empty != (Envelope{}) {
		t.Errorf("empty envelope = %+v", empty)
	}
}
