// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

// singularTolerance は逆行列を持たないとみなす正規化行列式の閾値。
// 行列式を各軸の長さの積で割るため、一様なスケールの大小には影響されない。
const singularTolerance = 1e-9

// Mat4 は列優先の4x4行列を表す。
type Mat4 mgl64.Mat4

// NewMat4 は単位行列を返す。
func NewMat4() Mat4 {
	return Mat4(mgl64.Ident4())
}

// NewMat4FromTRS は平行移動・回転・スケールから行列を生成する。
func NewMat4FromTRS(translation Vec3, rotation Quaternion, scale Vec3) Mat4 {
	return translation.ToMat4().Muled(rotation.ToMat4()).Muled(scale.ToScaleMat4())
}

// NewMat4FromColumnMajor は列優先の16要素から行列を生成する。
func NewMat4FromColumnMajor(values [16]float64) Mat4 {
	return Mat4(values)
}

// Muled は行列積を返す。
func (m Mat4) Muled(other Mat4) Mat4 {
	return Mat4(mgl64.Mat4(m).Mul4(mgl64.Mat4(other)))
}

// Det は行列式を返す。
func (m Mat4) Det() float64 {
	return mgl64.Mat4(m).Det()
}

// IsInvertible は逆行列を持つか判定する。
func (m Mat4) IsInvertible() bool {
	scale := m.Scale()
	volume := scale.X * scale.Y * scale.Z
	if volume == 0 {
		return false
	}
	return math.Abs(m.Det())/volume > singularTolerance
}

// Inverted は逆行列を返す。逆行列を持たない場合は単位行列を返す。
func (m Mat4) Inverted() Mat4 {
	if !m.IsInvertible() {
		return NewMat4()
	}
	return Mat4(mgl64.Mat4(m).Inv())
}

// MulVec3 は点として座標変換した結果を返す。
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return vec3FromMgl(mgl64.Mat4(m).Mul4x1(v.mgl().Vec4(1)).Vec3())
}

// MulDirection は方向ベクトルとして変換した結果を返す。平行移動は含まない。
func (m Mat4) MulDirection(v Vec3) Vec3 {
	return vec3FromMgl(mgl64.Mat4(m).Mul4x1(v.mgl().Vec4(0)).Vec3())
}

// Translation は平行移動成分を返す。
func (m Mat4) Translation() Vec3 {
	return NewVec3(m[12], m[13], m[14])
}

// Scale は各軸のスケール成分を返す。
func (m Mat4) Scale() Vec3 {
	return NewVec3(
		NewVec3(m[0], m[1], m[2]).Length(),
		NewVec3(m[4], m[5], m[6]).Length(),
		NewVec3(m[8], m[9], m[10]).Length(),
	)
}

// Rotation はスケールを除いた回転成分を返す。
func (m Mat4) Rotation() Quaternion {
	scale := m.Scale()
	if scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
		return NewQuaternion()
	}
	normalized := mgl64.Mat4(m)
	for col, s := range []float64{scale.X, scale.Y, scale.Z} {
		for row := 0; row < 3; row++ {
			normalized[col*4+row] /= s
		}
	}
	normalized[12], normalized[13], normalized[14] = 0, 0, 0
	return Quaternion(mgl64.Mat4ToQuat(normalized)).Normalized()
}

// Linear は平行移動成分を除いた行列を返す。
func (m Mat4) Linear() Mat4 {
	linear := m
	linear[12], linear[13], linear[14] = 0, 0, 0
	return linear
}

// NearEquals は許容誤差内で一致するか判定する。
func (m Mat4) NearEquals(other Mat4, epsilon float64) bool {
	for i := range m {
		if !scalar.EqualWithinAbs(m[i], other[i], epsilon) {
			return false
		}
	}
	return true
}

// IsIdent は単位行列か判定する。
func (m Mat4) IsIdent() bool {
	return m.NearEquals(NewMat4(), 1e-10)
}
