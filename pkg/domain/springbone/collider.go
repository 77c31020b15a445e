// 指示: miu200521358
package springbone

import "github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"

// ColliderShape は揺れ物コライダー形状を表す。SphereShape と CapsuleShape のみが実装する。
type ColliderShape interface {
	// ShapeName は形状名を返す。
	ShapeName() string
	// collide はワールド行列で配置した形状から tail を押し出す。
	collide(worldMatrix mmath.Mat4, tail mmath.Vec3, hitRadius float64) (mmath.Vec3, bool)
}

// SphereShape は球コライダーを表す。Offset はコライダーノードのローカル空間。
type SphereShape struct {
	Offset mmath.Vec3
	Radius float64
}

// CapsuleShape はカプセルコライダーを表す。Offset と Tail はコライダーノードのローカル空間。
type CapsuleShape struct {
	Offset mmath.Vec3
	Tail   mmath.Vec3
	Radius float64
}

// ShapeName は形状名を返す。
func (s *SphereShape) ShapeName() string { return "sphere" }

// ShapeName は形状名を返す。
func (s *CapsuleShape) ShapeName() string { return "capsule" }

func (s *SphereShape) collide(worldMatrix mmath.Mat4, tail mmath.Vec3, hitRadius float64) (mmath.Vec3, bool) {
	center := worldMatrix.MulVec3(s.Offset)
	return pushOut(center, tail, s.Radius+hitRadius)
}

func (s *CapsuleShape) collide(worldMatrix mmath.Mat4, tail mmath.Vec3, hitRadius float64) (mmath.Vec3, bool) {
	head := worldMatrix.MulVec3(s.Offset)
	end := worldMatrix.MulVec3(s.Tail)
	segment := end.Subed(head)
	lengthSq := segment.Dot(segment)
	closest := head
	if lengthSq > 0 {
		t := tail.Subed(head).Dot(segment) / lengthSq
		if t > 1 {
			t = 1
		} else if t < 0 {
			t = 0
		}
		closest = head.Added(segment.MuledScalar(t))
	}
	return pushOut(closest, tail, s.Radius+hitRadius)
}

// pushOut は center から limit 未満の距離にある tail を limit の距離まで押し出す。
func pushOut(center mmath.Vec3, tail mmath.Vec3, limit float64) (mmath.Vec3, bool) {
	delta := tail.Subed(center)
	distance := delta.Length()
	if distance >= limit || distance == 0 {
		return tail, false
	}
	return center.Added(delta.MuledScalar(limit / distance)), true
}

// Collider はノードに取り付けたコライダーを表す。
type Collider struct {
	NodeIndex int
	Shape     ColliderShape
}

// ColliderGroup はジョイントが参照するコライダーの集合を表す。
type ColliderGroup struct {
	Name      string
	Colliders []*Collider
}
