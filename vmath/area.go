package vmath

// AABB is an axis-aligned box given by its top-left corner and size
// Edges are inclusive of Min and exclusive of Max for containment, touching boxes do not intersect
type AABB struct {
	Min  Vec2
	Size Vec2
}

// BoxAt builds a box from its top-left corner and size
func BoxAt(pos, size Vec2) AABB {
	return AABB{Min: pos, Size: size}
}

// Max returns the bottom-right corner
func (b AABB) Max() Vec2 {
	return V2Add(b.Min, b.Size)
}

// Center returns the center point of the box
func (b AABB) Center() Vec2 {
	return V2Add(b.Min, V2Scale(b.Size, 0.5))
}

// Contains checks if point is within the box
func (b AABB) Contains(p Vec2) bool {
	max := b.Max()
	return p.X >= b.Min.X && p.X < max.X && p.Y >= b.Min.Y && p.Y < max.Y
}

// Intersects reports strict overlap of two boxes on both axes
// Zero-sized boxes never intersect anything
func (b AABB) Intersects(o AABB) bool {
	if b.Size.X <= 0 || b.Size.Y <= 0 || o.Size.X <= 0 || o.Size.Y <= 0 {
		return false
	}
	bMax, oMax := b.Max(), o.Max()
	return b.Min.X < oMax.X && o.Min.X < bMax.X &&
		b.Min.Y < oMax.Y && o.Min.Y < bMax.Y
}
