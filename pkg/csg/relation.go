package csg

// PointRelation is the position of a point relative to a plane.
type PointRelation uint8

const (
	PointAligned PointRelation = iota // on the plane, within Epsilon
	PointFront                        // in front of (outside) the plane
	PointBack                         // behind (inside) the plane
)

func (r PointRelation) String() string {
	switch r {
	case PointAligned:
		return "aligned"
	case PointFront:
		return "front"
	case PointBack:
		return "back"
	default:
		return "unknown"
	}
}

// BrushRelation is the position of a point relative to a convex brush.
type BrushRelation uint8

const (
	BrushOutside  BrushRelation = iota // in front of at least one plane
	BrushInside                        // strictly behind every plane
	BrushTouching                      // on the boundary
)

func (r BrushRelation) String() string {
	switch r {
	case BrushOutside:
		return "outside"
	case BrushInside:
		return "inside"
	case BrushTouching:
		return "touching"
	default:
		return "unknown"
	}
}

// FragmentRelation classifies a fragment against a face plane or, after
// carving, against a whole brush.
type FragmentRelation uint8

const (
	RelationInside         FragmentRelation = iota // behind the plane
	RelationOutside                                // in front of the plane
	RelationAligned                                // coplanar, same facing
	RelationReverseAligned                         // coplanar, opposite facing
	RelationSplit                                  // straddles the plane
)

func (r FragmentRelation) String() string {
	switch r {
	case RelationInside:
		return "inside"
	case RelationOutside:
		return "outside"
	case RelationAligned:
		return "aligned"
	case RelationReverseAligned:
		return "reverse-aligned"
	case RelationSplit:
		return "split"
	default:
		return "unknown"
	}
}
