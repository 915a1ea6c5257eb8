package spatial

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"

	"github.com/ousposer/ousposer/internal/furniture"
	"github.com/ousposer/ousposer/internal/geo"
	"github.com/ousposer/ousposer/internal/testutil"
)

func TestCellID_Unique(t *testing.T) {
	seen := make(map[int64][2]int64)
	for x := int64(-20); x <= 20; x++ {
		for y := int64(-20); y <= 20; y++ {
			id := cellID(x, y)
			if prev, ok := seen[id]; ok {
				t.Fatalf("cell (%d,%d) collides with %v", x, y, prev)
			}
			seen[id] = [2]int64{x, y}
		}
	}
}

func TestFindComponentsNearPoint(t *testing.T) {
	comps := testutil.Components(t, 1, 4,
		testutil.Segment(0, 0, 1, 0),     // 1
		testutil.Segment(1.05, 0, 2, 0),  // 2: 5 cm from 1
		testutil.Segment(1, 0.5, 1, 1.5), // 3: 50 cm away
		testutil.Segment(30, 30, 31, 30), // 4: far
	)
	idx := NewVertexIndex(comps, IndexParams{})

	end := comps[0].Vertices[1]
	got := idx.FindComponentsNearPoint(end, 0.10, 1)
	if diff := cmp.Diff([]int64{2}, got); diff != "" {
		t.Errorf("0.10 m neighbours (-want +got):\n%s", diff)
	}

	got = idx.FindComponentsNearPoint(end, 0.60, 1)
	if diff := cmp.Diff([]int64{2, 3}, got); diff != "" {
		t.Errorf("0.60 m neighbours (-want +got):\n%s", diff)
	}

	got = idx.FindComponentsNearPoint(end, 0.60, -1)
	if diff := cmp.Diff([]int64{1, 2, 3}, got); diff != "" {
		t.Errorf("without exclusion (-want +got):\n%s", diff)
	}

	got = idx.FindComponentsNearPoint(testutil.Line(testutil.Offset(100, 100))[0], 1, -1)
	if got == nil || len(got) != 0 {
		t.Errorf("empty query = %#v, want empty non-nil slice", got)
	}
}

func TestFindComponentsNearPoint_ToleranceEdge(t *testing.T) {
	origin := testutil.Frame().Origin
	// 0.1299 m of arc due north and due east, just inside a 0.13 m tolerance.
	north := orb.Point{origin.Lon(), origin.Lat() + 0.1299/geo.MetersPerDegree}
	east := orb.Point{origin.Lon() + 0.1299/(geo.MetersPerDegree*math.Cos(origin.Lat()*math.Pi/180)), origin.Lat()}
	comps := []*furniture.Component{
		testutil.Component(t, 2, 4, orb.LineString{north, {north.Lon(), north.Lat() + 1e-5}}),
		testutil.Component(t, 3, 4, orb.LineString{east, {east.Lon() + 1e-5, east.Lat()}}),
	}
	for _, p := range []orb.Point{north, east} {
		d := geo.DistanceMeters(origin.Lat(), origin.Lon(), p.Lat(), p.Lon())
		if d > 0.13 || d < 0.1298 {
			t.Fatalf("fixture distance %v outside (0.1298, 0.13]", d)
		}
	}

	idx := NewVertexIndex(comps, IndexParams{})
	if diff := cmp.Diff([]int64{2, 3}, idx.FindComponentsNearPoint(origin, 0.13, 1)); diff != "" {
		t.Errorf("neighbours at the tolerance edge (-want +got):\n%s", diff)
	}
	if got := idx.FindComponentsNearPoint(origin, 0.129, 1); len(got) != 0 {
		t.Errorf("0.129 m query returned %v, want none", got)
	}
}

func TestFindComponentsNear(t *testing.T) {
	comps := testutil.Components(t, 10, 4,
		testutil.Segment(0, 0, 2, 0),
		testutil.Segment(2, 0.08, 2, 1),
		testutil.Segment(-0.05, 0, -0.05, -1),
		testutil.Segment(5, 5, 6, 5),
	)
	idx := NewVertexIndex(comps, IndexParams{})

	got := idx.FindComponentsNear(10, 0.10)
	if diff := cmp.Diff([]int64{11, 12}, got); diff != "" {
		t.Errorf("neighbours (-want +got):\n%s", diff)
	}
	if got := idx.FindComponentsNear(99, 0.10); len(got) != 0 {
		t.Errorf("unknown component neighbours = %v", got)
	}
}

func TestLengthBand(t *testing.T) {
	comps := testutil.Components(t, 1, 4,
		testutil.Segment(0, 0, 0.2, 0), // too short
		testutil.Segment(0, 0, 2, 0),
		testutil.Segment(0, 0, 9, 0), // too long
	)
	idx := NewVertexIndex(comps, IndexParams{MinLengthMeters: 0.3, MaxLengthMeters: 8})

	if idx.Contains(1) || idx.Contains(3) {
		t.Error("components outside the length band were indexed")
	}
	if !idx.Contains(2) {
		t.Error("component inside the band was not indexed")
	}
	if idx.Len() != 2 {
		t.Errorf("Len = %d, want 2", idx.Len())
	}
}

func TestQueryWiderThanCell(t *testing.T) {
	comps := testutil.Components(t, 1, 4,
		testutil.Segment(0, 0, 0, 1),
		testutil.Segment(3.4, 0, 3.4, 1),
		testutil.Segment(3.6, 0, 3.6, 1),
	)
	idx := NewVertexIndex(comps, IndexParams{CellSizeMeters: 0.5})

	got := idx.FindComponentsNear(1, 3.5)
	if diff := cmp.Diff([]int64{2}, got); diff != "" {
		t.Errorf("neighbours (-want +got):\n%s", diff)
	}
}

func TestBruteForceAgreement(t *testing.T) {
	var comps []*furniture.Component
	for i := 0; i < 40; i++ {
		a := float64(i) * 0.7
		x, y := 6*math.Cos(a)+float64(i%5)*0.3, 6*math.Sin(a)
		comps = append(comps, testutil.Component(t, int64(i+1), 4, testutil.Segment(x, y, x+0.5, y+0.2)))
	}
	idx := NewVertexIndex(comps, IndexParams{})

	for _, tol := range []float64{0.1, 0.5, 1.3, 3.5} {
		for _, c := range comps {
			p := c.Vertices[0]
			want := []int64{}
			for _, o := range comps {
				for _, v := range o.Vertices {
					if o.ID != c.ID && geo.DistanceMeters(p.Lat(), p.Lon(), v.Lat(), v.Lon()) <= tol {
						want = append(want, o.ID)
						break
					}
				}
			}
			got := idx.FindComponentsNearPoint(p, tol, c.ID)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("tol %.1f around %d (-want +got):\n%s", tol, c.ID, diff)
			}
		}
	}
}
