// 指示: miu200521358
package mmath

import (
	"math"
	"testing"
)

func TestMat4InvertedRoundTrip(t *testing.T) {
	mat := NewMat4FromTRS(
		NewVec3(1, 2, 3),
		NewQuaternionFromAxisAngle(UNIT_Y_VEC3, math.Pi/3),
		NewVec3(2, 2, 2),
	)
	point := NewVec3(0.5, -1, 4)

	got := mat.Inverted().MulVec3(mat.MulVec3(point))
	if !got.NearEquals(point, 1e-9) {
		t.Fatalf("inverse round trip mismatch: got=%v want=%v", got, point)
	}
}

func TestMat4InvertedSingularFallsBackToIdentity(t *testing.T) {
	singular := NewVec3(0, 1, 1).ToScaleMat4()
	if singular.IsInvertible() {
		t.Fatalf("expected singular matrix")
	}
	if !singular.Inverted().IsIdent() {
		t.Fatalf("singular inverse should fall back to identity")
	}
}

func TestMat4InvertedKeepsTinyUniformScale(t *testing.T) {
	mat := NewMat4FromTRS(
		NewVec3(0, 1e-3, 0),
		NewQuaternionFromAxisAngle(UNIT_X_VEC3, math.Pi/6),
		NewVec3(1e-5, 1e-5, 1e-5),
	)
	if !mat.IsInvertible() {
		t.Fatalf("uniformly scaled matrix should be invertible: det=%g", mat.Det())
	}
	if got := mat.Muled(mat.Inverted()); !got.NearEquals(NewMat4(), 1e-9) {
		t.Fatalf("inverse should not fall back to identity: %v", got)
	}
}

func TestMat4CollinearAxesAreSingular(t *testing.T) {
	collinear := NewMat4FromColumnMajor([16]float64{
		1, 0, 0, 0,
		1, 1e-12, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	if collinear.IsInvertible() {
		t.Fatalf("matrix with collinear axes should be singular")
	}
}

func TestMat4RotationIgnoresScale(t *testing.T) {
	rotation := NewQuaternionFromAxisAngle(UNIT_Z_VEC3, math.Pi/4)
	mat := NewMat4FromTRS(NewVec3(1, 0, 0), rotation, NewVec3(3, 3, 3))

	if !mat.Rotation().NearEquals(rotation, 1e-9) {
		t.Fatalf("rotation mismatch: got=%v want=%v", mat.Rotation(), rotation)
	}
	if !mat.Scale().NearEquals(NewVec3(3, 3, 3), 1e-9) {
		t.Fatalf("scale mismatch: %v", mat.Scale())
	}
	if !mat.Translation().NearEquals(NewVec3(1, 0, 0), 1e-9) {
		t.Fatalf("translation mismatch: %v", mat.Translation())
	}
}

func TestMat4MulDirectionIgnoresTranslation(t *testing.T) {
	mat := NewVec3(10, 20, 30).ToMat4()
	got := mat.MulDirection(UNIT_X_VEC3)
	if !got.NearEquals(UNIT_X_VEC3, 1e-12) {
		t.Fatalf("direction should not be translated: %v", got)
	}
}

func TestQuaternionFromUnitVectors(t *testing.T) {
	from := NewVec3(0, 1, 0)
	to := NewVec3(1, 1, 0).Normalized()

	got := NewQuaternionFromUnitVectors(from, to).MulVec3(from)
	if !got.NearEquals(to, 1e-9) {
		t.Fatalf("rotated vector mismatch: got=%v want=%v", got, to)
	}
}

func TestQuaternionFromOppositeUnitVectors(t *testing.T) {
	from := NewVec3(0, 0, 1)
	to := NewVec3(0, 0, -1)

	got := NewQuaternionFromUnitVectors(from, to).MulVec3(from)
	if !got.NearEquals(to, 1e-6) {
		t.Fatalf("opposite vectors should rotate 180 degrees: got=%v", got)
	}
}

func TestQuaternionNearEqualsTreatsNegatedAsSame(t *testing.T) {
	q := NewQuaternionFromAxisAngle(UNIT_X_VEC3, 0.3)
	negated := NewQuaternionByValues(-q.X(), -q.Y(), -q.Z(), -q.W)
	if !q.NearEquals(negated, 1e-12) {
		t.Fatalf("q and -q should be the same rotation")
	}
}

func TestVec3NormalizedZeroStaysZero(t *testing.T) {
	if !ZERO_VEC3.Normalized().IsZero() {
		t.Fatalf("zero vector should stay zero")
	}
}
