// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"

// RotateY180 はY軸周りに180度回転した座標を返す。
// ボーン位置、頂点、重力方向、コライダーオフセットは全てこの変換に従う。
func RotateY180(v mmath.Vec3) mmath.Vec3 {
	return mmath.NewVec3(-v.X, v.Y, -v.Z)
}

// rotateY180Quaternion はY軸180度回転で回転を共役変換する。
func rotateY180Quaternion(q mmath.Quaternion) mmath.Quaternion {
	return mmath.NewQuaternionByValues(-q.X(), q.Y(), -q.Z(), q.W)
}

// rotateY180Vectors は座標列をその場で変換する。
func rotateY180Vectors(values []mmath.Vec3) {
	for i := range values {
		values[i] = RotateY180(values[i])
	}
}
