package csg

import "fmt"

// VolumeID identifies a region type such as solid or air. The kernel only
// compares volumes for equality.
type VolumeID uint32

type volumeOpKind uint8

const (
	opFill volumeOpKind = iota
	opReplace
)

// VolumeOperation maps the volume a brush overlaps to the volume it leaves
// behind. The zero value fills with volume 0.
type VolumeOperation struct {
	kind volumeOpKind
	from VolumeID
	to   VolumeID
}

// Fill returns an operation that turns any volume into v.
func Fill(v VolumeID) VolumeOperation {
	return VolumeOperation{kind: opFill, to: v}
}

// Replace returns an operation that turns from into to and leaves every
// other volume untouched.
func Replace(from, to VolumeID) VolumeOperation {
	return VolumeOperation{kind: opReplace, from: from, to: to}
}

// Apply returns the volume produced by the operation when it covers v.
func (op VolumeOperation) Apply(v VolumeID) VolumeID {
	switch op.kind {
	case opReplace:
		if v == op.from {
			return op.to
		}
		return v
	default:
		return op.to
	}
}

// IsFill reports whether the operation is a fill, returning its volume.
func (op VolumeOperation) IsFill() (VolumeID, bool) {
	return op.to, op.kind == opFill
}

// IsReplace reports whether the operation is a replace, returning its
// source and target volumes.
func (op VolumeOperation) IsReplace() (from, to VolumeID, ok bool) {
	return op.from, op.to, op.kind == opReplace
}

func (op VolumeOperation) String() string {
	if op.kind == opReplace {
		return fmt.Sprintf("replace(%d->%d)", op.from, op.to)
	}
	return fmt.Sprintf("fill(%d)", op.to)
}
