// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrmmigrate/pkg/domain/springbone"

// RotateGravityDirections は各ジョイントの重力方向をY軸180度回転する。
func RotateGravityDirections(joints []*springbone.Joint) {
	for _, joint := range joints {
		if joint == nil {
			continue
		}
		joint.Settings.GravityDir = RotateY180(joint.Settings.GravityDir)
	}
}

// RotateColliderOffsets は各コライダー形状のオフセットをY軸180度回転する。カプセルは末端も回転する。
func RotateColliderOffsets(colliders []*springbone.Collider) {
	for _, collider := range colliders {
		if collider == nil {
			continue
		}
		switch shape := collider.Shape.(type) {
		case *springbone.SphereShape:
			shape.Offset = RotateY180(shape.Offset)
		case *springbone.CapsuleShape:
			shape.Offset = RotateY180(shape.Offset)
			shape.Tail = RotateY180(shape.Tail)
		}
	}
}
