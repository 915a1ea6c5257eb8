package furniture

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/ousposer/ousposer/internal/geo"
)

var origin = orb.Point{2.3522, 48.8566}

func metric(pts ...r2.Point) orb.LineString {
	f := geo.NewLocalFrame(origin)
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = f.Unproject(p)
	}
	return ls
}

func TestNewComponent_Features(t *testing.T) {
	ls := metric(r2.Point{}, r2.Point{X: 2}, r2.Point{X: 2, Y: 1}, r2.Point{Y: 1}, r2.Point{})
	c, err := NewComponent(42, 11, ls)
	if err != nil {
		t.Fatalf("NewComponent: %v", err)
	}

	f := c.Features
	if f.VertexCount != 5 {
		t.Errorf("VertexCount = %d, want 5", f.VertexCount)
	}
	if math.Abs(f.TotalLengthMeters-6) > 0.01 {
		t.Errorf("TotalLengthMeters = %v, want 6", f.TotalLengthMeters)
	}
	if math.Abs(f.AspectRatio-0.5) > 0.001 {
		t.Errorf("AspectRatio = %v, want 0.5", f.AspectRatio)
	}
	if math.Abs(f.CumulativeTurnDeg-270) > 0.01 {
		t.Errorf("CumulativeTurnDeg = %v, want 270", f.CumulativeTurnDeg)
	}
	if math.Abs(f.Envelope.Length-2) > 0.005 || math.Abs(f.Envelope.Width-1) > 0.005 {
		t.Errorf("Envelope = %v x %v, want 2 x 1", f.Envelope.Length, f.Envelope.Width)
	}
}

func TestNewComponent_CopiesVertices(t *testing.T) {
	ls := metric(r2.Point{}, r2.Point{X: 1})
	c, err := NewComponent(1, 1, ls)
	if err != nil {
		t.Fatal(err)
	}
	ls[0] = orb.Point{0, 0}
	if c.Vertices[0] == ls[0] {
		t.Error("component shares its vertex slice with the caller")
	}
}

func TestNewComponent_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		partition int
		ls        orb.LineString
	}{
		{"no vertices", 1, nil},
		{"single vertex", 1, orb.LineString{origin}},
		{"nan", 1, orb.LineString{origin, {math.NaN(), 48.85}}},
		{"inf", 1, orb.LineString{origin, {2.35, math.Inf(1)}}},
		{"latitude out of range", 1, orb.LineString{origin, {2.35, 91}}},
		{"partition zero", 0, orb.LineString{origin, {2.353, 48.857}}},
		{"partition 21", 21, orb.LineString{origin, {2.353, 48.857}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewComponent(7, tt.partition, tt.ls)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestAspectRatio_ZeroExtent(t *testing.T) {
	c, err := NewComponent(1, 1, orb.LineString{origin, origin})
	if err != nil {
		t.Fatal(err)
	}
	if c.Features.AspectRatio != 0 {
		t.Errorf("AspectRatio = %v, want 0", c.Features.AspectRatio)
	}
}

func TestObjectID(t *testing.T) {
	a := ObjectID(5, []int64{3, 1, 2})
	b := ObjectID(5, []int64{1, 2, 3})
	if a != b {
		t.Errorf("member order changed id: %s vs %s", a, b)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("id %q is not a uuid: %v", a, err)
	}
	if ObjectID(6, []int64{1, 2, 3}) == a {
		t.Error("partition should be part of the id")
	}
	if ObjectID(5, []int64{1, 23}) == ObjectID(5, []int64{12, 3}) {
		t.Error("member boundaries must be unambiguous")
	}
}

func TestNewDetectedObject(t *testing.T) {
	c1, _ := NewComponent(20, 4, metric(r2.Point{}, r2.Point{X: 2}))
	c2, _ := NewComponent(10, 4, metric(r2.Point{Y: 1}, r2.Point{X: 2, Y: 1}))

	obj := NewDetectedObject(TypeBench, SubtypeMultiComponentRectangle4, MethodRectangleDBSCAN, 0.9, []*Component{c1, c2})

	if diff := cmp.Diff([]int64{10, 20}, obj.Members); diff != "" {
		t.Errorf("members (-want +got):\n%s", diff)
	}
	if obj.Partition != 4 {
		t.Errorf("Partition = %d, want 4", obj.Partition)
	}
	if obj.ID != ObjectID(4, []int64{10, 20}) {
		t.Errorf("ID = %s", obj.ID)
	}
	want := geo.NewLocalFrame(origin).Unproject(r2.Point{X: 1, Y: 0.5})
	if geo.DistanceMeters(obj.Location.Lat(), obj.Location.Lon(), want.Lat(), want.Lon()) > 0.01 {
		t.Errorf("Location = %v, want %v", obj.Location, want)
	}
	if obj.Summary.MemberCount != 2 || obj.Summary.VertexCount != 4 {
		t.Errorf("Summary = %+v", obj.Summary)
	}
}

func TestSortObjects(t *testing.T) {
	objs := []DetectedObject{
		{ID: "c", Members: []int64{9}},
		{ID: "b", Members: []int64{2, 3}},
		{ID: "a", Members: []int64{5}},
	}
	SortObjects(objs)
	got := []string{objs[0].ID, objs[1].ID, objs[2].ID}
	if diff := cmp.Diff([]string{"b", "a", "c"}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestPartitionOf(t *testing.T) {
	a, _ := NewComponent(1, 3, metric(r2.Point{}, r2.Point{X: 1}))
	b, _ := NewComponent(2, 3, metric(r2.Point{}, r2.Point{X: 1}))
	c, _ := NewComponent(3, 4, metric(r2.Point{}, r2.Point{X: 1}))

	if p, ok := PartitionOf([]*Component{a, b}); !ok || p != 3 {
		t.Errorf("PartitionOf = %d, %v", p, ok)
	}
	if _, ok := PartitionOf([]*Component{a, c}); ok {
		t.Error("mixed partitions should not report ok")
	}
	if _, ok := PartitionOf(nil); ok {
		t.Error("empty slice should not report ok")
	}
}

func TestMultiComponentSubtype(t *testing.T) {
	for n, want := range map[int]Subtype{4: SubtypeMultiComponentRectangle4, 5: SubtypeMultiComponentRectangle5, 6: SubtypeMultiComponentRectangle6} {
		if got, ok := MultiComponentSubtype(n); !ok || got != want {
			t.Errorf("MultiComponentSubtype(%d) = %v, %v", n, got, ok)
		}
	}
	if _, ok := MultiComponentSubtype(3); ok {
		t.Error("3 members is not a multi-component bench")
	}
}
