package octree

import "testing"

func TestAabbContainsHalfOpen(t *testing.T) {
	a := Aabb[uint8]{Center: SplatVec3[uint8](16), HalfSize: 16}
	tests := []struct {
		p    Vec3[uint8]
		want bool
	}{
		{Vec3[uint8]{0, 0, 0}, true},
		{Vec3[uint8]{31, 31, 31}, true},
		{Vec3[uint8]{32, 16, 16}, false}, // upper face excluded
		{Vec3[uint8]{16, 32, 16}, false},
		{Vec3[uint8]{16, 16, 32}, false},
	}
	for _, tc := range tests {
		if got := a.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestOctantEncoding(t *testing.T) {
	// Invariant 7: c = splat(8), p = (9,7,9) maps to octant 0b101 = 5.
	a := Aabb[uint8]{Center: SplatVec3[uint8](8), HalfSize: 8}
	got := a.Octant(Vec3[uint8]{9, 7, 9})
	if got != 0b101 {
		t.Errorf("Octant(9,7,9) = %#b, want 0b101", got)
	}
}

func TestAabbSplit(t *testing.T) {
	a := Aabb[uint8]{Center: SplatVec3[uint8](16), HalfSize: 16}
	children := a.Split()
	for octant, child := range children {
		if child.HalfSize != 8 {
			t.Fatalf("child %d half size = %d, want 8", octant, child.HalfSize)
		}
		wantX, wantY, wantZ := uint8(8), uint8(8), uint8(8)
		if octant&1 != 0 {
			wantX = 24
		}
		if octant&2 != 0 {
			wantY = 24
		}
		if octant&4 != 0 {
			wantZ = 24
		}
		if child.Center.X != wantX || child.Center.Y != wantY || child.Center.Z != wantZ {
			t.Errorf("child %d center = %v, want (%d,%d,%d)", octant, child.Center, wantX, wantY, wantZ)
		}
		// Every child AABB must itself agree with the parent's octant selector
		// for a point placed firmly inside it.
		gotOctant := a.Octant(child.Center)
		if int(gotOctant) != octant {
			t.Errorf("child %d center octant-selects to %d", octant, gotOctant)
		}
	}
}

// TestAabbContainsFullRange exercises the canonical full-range root
// (center == half_size), where center+half_size wraps U to exactly 0.
// Contains must still hold at both ends of the type's range.
func TestAabbContainsFullRange(t *testing.T) {
	a := Aabb[uint8]{Center: SplatVec3[uint8](128), HalfSize: 128}
	for _, p := range []Vec3[uint8]{{0, 0, 0}, {255, 255, 255}, {128, 0, 255}} {
		if !a.Contains(p) {
			t.Errorf("Contains(%v) = false, want true", p)
		}
	}
}

func TestAabbOverflow(t *testing.T) {
	_, err := NewAabb(SplatVec3[uint8](250), 16)
	if err == nil {
		t.Fatal("expected overflow error")
	}
	_, err = NewAabb(Vec3[uint8]{X: 4, Y: 100, Z: 100}, 16)
	if err == nil {
		t.Fatal("expected underflow error")
	}
	_, err = NewAabb(SplatVec3[uint8](16), 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSplittable(t *testing.T) {
	tests := []struct {
		half uint8
		want bool
	}{
		{1, false},
		{2, true},
		{3, false},
		{16, true},
	}
	for _, tc := range tests {
		a := Aabb[uint8]{Center: SplatVec3[uint8](64), HalfSize: tc.half}
		if got := a.Splittable(); got != tc.want {
			t.Errorf("Splittable(half=%d) = %v, want %v", tc.half, got, tc.want)
		}
	}
}
