package furniture

import (
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// ObjectType is the functional class of a detected object.
type ObjectType string

const (
	TypeTrashBin ObjectType = "trash_bin"
	TypeBench    ObjectType = "bench"
)

// Subtype names the rule that reconstructed the object.
type Subtype string

const (
	SubtypeTrashBin                  Subtype = "trash_bin"
	SubtypeSingle5Point              Subtype = "single_5_point"
	SubtypeSingle7Point              Subtype = "single_7_point"
	SubtypeSingleLengthFallback      Subtype = "single_length_fallback"
	SubtypeTwoComponentFrameBackrest Subtype = "two_component_frame_backrest"
	SubtypeMultiComponentRectangle4  Subtype = "multi_component_rectangle_4"
	SubtypeMultiComponentRectangle5  Subtype = "multi_component_rectangle_5"
	SubtypeMultiComponentRectangle6  Subtype = "multi_component_rectangle_6"
)

// MultiComponentSubtype maps a member count (4..6) to its subtype.
func MultiComponentSubtype(members int) (Subtype, bool) {
	switch members {
	case 4:
		return SubtypeMultiComponentRectangle4, true
	case 5:
		return SubtypeMultiComponentRectangle5, true
	case 6:
		return SubtypeMultiComponentRectangle6, true
	}
	return "", false
}

// Method tags how the detection was reached.
const (
	MethodTrashBinSignature  = "trash_bin_signature"
	MethodSingleEnvelope     = "single_component_envelope"
	MethodSingleLength       = "single_component_length"
	MethodTwoComponentDBSCAN = "two_component_dbscan_backrest"
	MethodRectangleDBSCAN    = "rectangle_frame_dbscan"
	MethodRectangleChain     = "rectangle_frame_chain"
)

// Summary holds the geometric description persisted alongside a detection.
type Summary struct {
	EnvelopeLengthMeters float64 `json:"envelope_length_m"`
	EnvelopeWidthMeters  float64 `json:"envelope_width_m"`
	VertexCount          int     `json:"vertex_count"`
	TotalLengthMeters    float64 `json:"total_length_m"`
	MemberCount          int     `json:"member_count"`
	BackrestCount        int     `json:"backrest_count"`
}

// DetectedObject is a reconstructed physical object. Values are created by
// the classifier and never mutated.
type DetectedObject struct {
	ID         string
	Type       ObjectType
	Subtype    Subtype
	Members    []int64
	Partition  int
	Location   orb.Point
	Summary    Summary
	Method     string
	Confidence float64
}

// objectNamespace scopes object ids so they cannot collide with other
// SHA-1 uuids derived from the same member lists.
var objectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://opendata.paris.fr/explore/dataset/plan-de-voirie-mobiliers-urbains"))

// ObjectID derives a stable id from the partition and member set. Member
// order does not matter.
func ObjectID(partition int, members []int64) string {
	sorted := slices.Clone(members)
	slices.Sort(sorted)

	var b strings.Builder
	b.WriteString(strconv.Itoa(partition))
	for _, id := range sorted {
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return uuid.NewSHA1(objectNamespace, []byte(b.String())).String()
}

// NewDetectedObject assembles an object from its member components. Members
// are sorted, the id is derived, and the location is the mean of the member
// centroids. Summary fields computed from the members are filled in; callers
// set BackrestCount and the envelope when a frame defines it.
func NewDetectedObject(typ ObjectType, subtype Subtype, method string, confidence float64, members []*Component) DetectedObject {
	ids := make([]int64, len(members))
	var lon, lat, length float64
	var vertices int
	for i, c := range members {
		ids[i] = c.ID
		lon += c.Features.Centroid.Lon()
		lat += c.Features.Centroid.Lat()
		length += c.Features.TotalLengthMeters
		vertices += c.Features.VertexCount
	}
	slices.Sort(ids)

	var partition int
	var loc orb.Point
	if n := float64(len(members)); n > 0 {
		partition = members[0].Partition
		loc = orb.Point{lon / n, lat / n}
	}

	obj := DetectedObject{
		ID:         ObjectID(partition, ids),
		Type:       typ,
		Subtype:    subtype,
		Members:    ids,
		Partition:  partition,
		Location:   loc,
		Method:     method,
		Confidence: confidence,
		Summary: Summary{
			VertexCount:       vertices,
			TotalLengthMeters: length,
			MemberCount:       len(members),
		},
	}
	if len(members) == 1 {
		env := members[0].Features.Envelope
		obj.Summary.EnvelopeLengthMeters = env.Length
		obj.Summary.EnvelopeWidthMeters = env.Width
	}
	return obj
}

// SortObjects orders detections by first member id, then by id, giving a
// stable output order independent of rule evaluation order.
func SortObjects(objs []DetectedObject) {
	slices.SortFunc(objs, func(a, b DetectedObject) int {
		if len(a.Members) > 0 && len(b.Members) > 0 && a.Members[0] != b.Members[0] {
			if a.Members[0] < b.Members[0] {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
}
