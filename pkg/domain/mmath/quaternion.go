// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

// Quaternion は回転クォータニオンを表す。
type Quaternion mgl64.Quat

// NewQuaternion は単位クォータニオンを返す。
func NewQuaternion() Quaternion {
	return Quaternion(mgl64.QuatIdent())
}

// NewQuaternionByValues はx,y,z,w要素からクォータニオンを生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{W: w, V: mgl64.Vec3{x, y, z}}
}

// NewQuaternionFromAxisAngle は軸と角度(ラジアン)から回転を生成する。
func NewQuaternionFromAxisAngle(axis Vec3, radians float64) Quaternion {
	return Quaternion(mgl64.QuatRotate(radians, axis.Normalized().mgl()))
}

// NewQuaternionFromUnitVectors は from から to へ回す最短回転を返す。
func NewQuaternionFromUnitVectors(from Vec3, to Vec3) Quaternion {
	if from.IsZero() || to.IsZero() {
		return NewQuaternion()
	}
	return Quaternion(mgl64.QuatBetweenVectors(from.Normalized().mgl(), to.Normalized().mgl())).Normalized()
}

// X はx要素を返す。
func (q Quaternion) X() float64 { return q.V[0] }

// Y はy要素を返す。
func (q Quaternion) Y() float64 { return q.V[1] }

// Z はz要素を返す。
func (q Quaternion) Z() float64 { return q.V[2] }

// Muled は回転の合成 q*other を返す。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion(mgl64.Quat(q).Mul(mgl64.Quat(other)))
}

// MulVec3 はベクトルを回転させる。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	return vec3FromMgl(mgl64.Quat(q).Rotate(v.mgl()))
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	return Quaternion(mgl64.Quat(q).Inverse())
}

// Normalized は正規化したクォータニオンを返す。
func (q Quaternion) Normalized() Quaternion {
	if mgl64.Quat(q).Len() == 0 {
		return NewQuaternion()
	}
	return Quaternion(mgl64.Quat(q).Normalize())
}

// ToMat4 は回転行列を返す。
func (q Quaternion) ToMat4() Mat4 {
	return Mat4(mgl64.Quat(q).Mat4())
}

// IsIdent は単位回転か判定する。
func (q Quaternion) IsIdent() bool {
	return q.NearEquals(NewQuaternion(), 1e-10)
}

// NearEquals は同じ回転を表すか許容誤差内で判定する。q と -q は同一回転として扱う。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	dot := q.W*other.W + q.V[0]*other.V[0] + q.V[1]*other.V[1] + q.V[2]*other.V[2]
	return scalar.EqualWithinAbs(math.Abs(dot), 1, epsilon)
}
