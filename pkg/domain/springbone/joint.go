// 指示: miu200521358
// Package springbone は揺れ物(SpringBone)の実行時シミュレーションを提供する。
package springbone

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
)

// ImplicitTailLength は子ボーンを持たないジョイントの暗黙末端までの長さ。
const ImplicitTailLength = 0.07

// JointSettings はジョイントの物理パラメータを表す。GravityDir はワールド空間の単位ベクトル。
type JointSettings struct {
	Stiffness    float64
	GravityPower float64
	GravityDir   mmath.Vec3
	DragForce    float64
	HitRadius    float64
}

// Joint は揺れ物の1関節を表す。ChildIndex が負の場合は暗黙末端を使う。
type Joint struct {
	BoneIndex      int
	ChildIndex     int
	Settings       JointSettings
	ColliderGroups []*ColliderGroup

	initialLocalMatrix        mmath.Mat4
	initialLocalRotation      mmath.Quaternion
	initialLocalChildPosition mmath.Vec3
	boneAxis                  mmath.Vec3
	worldSpaceBoneLength      float64
	currentTail               mmath.Vec3
	prevTail                  mmath.Vec3
	initialized               bool
}

// NewJoint はJointを生成する。
func NewJoint(boneIndex int, childIndex int, settings JointSettings) *Joint {
	return &Joint{
		BoneIndex:            boneIndex,
		ChildIndex:           childIndex,
		Settings:             settings,
		initialLocalMatrix:   mmath.NewMat4(),
		initialLocalRotation: mmath.NewQuaternion(),
	}
}

// ImplicitLocalTail は子を持たないボーンの暗黙末端をボーンのローカル座標で返す。
// ボーン位置が原点の場合は上方向を使う。
func ImplicitLocalTail(localPosition mmath.Vec3) mmath.Vec3 {
	direction := localPosition.Normalized()
	if direction.IsZero() {
		direction = mmath.UNIT_Y_VEC3
	}
	return direction.MuledScalar(ImplicitTailLength)
}

// IsInitialized はSetInitState済みか返す。
func (j *Joint) IsInitialized() bool { return j.initialized }

// InitialLocalMatrix は初期ローカル行列を返す。
func (j *Joint) InitialLocalMatrix() mmath.Mat4 { return j.initialLocalMatrix }

// InitialLocalRotation は初期ローカル回転を返す。
func (j *Joint) InitialLocalRotation() mmath.Quaternion { return j.initialLocalRotation }

// BoneAxis はボーンのローカル軸を返す。
func (j *Joint) BoneAxis() mmath.Vec3 { return j.boneAxis }

// WorldSpaceBoneLength はワールド空間でのボーン長を返す。
func (j *Joint) WorldSpaceBoneLength() float64 { return j.worldSpaceBoneLength }

// CurrentTail は現在の末端ワールド座標を返す。
func (j *Joint) CurrentTail() mmath.Vec3 { return j.currentTail }

// PrevTail は前フレームの末端ワールド座標を返す。
func (j *Joint) PrevTail() mmath.Vec3 { return j.prevTail }

// WorldBoneAxis は初期姿勢のボーン軸をワールド空間で返す。
func (j *Joint) WorldBoneAxis(s *scene.Scene) mmath.Vec3 {
	initialWorld := s.ParentWorldMatrix(j.BoneIndex).Muled(j.initialLocalMatrix)
	return initialWorld.MulDirection(j.boneAxis).Normalized()
}

// setInitState は現在の姿勢を初期状態として取り込む。
func (j *Joint) setInitState(s *scene.Scene) {
	bone := s.Node(j.BoneIndex)
	if bone == nil {
		return
	}
	j.initialLocalMatrix = bone.LocalMatrix()
	j.initialLocalRotation = bone.Rotation
	if child := s.Node(j.ChildIndex); child != nil {
		j.initialLocalChildPosition = child.Position
	} else {
		j.initialLocalChildPosition = ImplicitLocalTail(bone.Position)
	}
	j.boneAxis = j.initialLocalChildPosition.Normalized()

	worldMatrix := s.WorldMatrix(j.BoneIndex)
	j.currentTail = worldMatrix.MulVec3(j.initialLocalChildPosition)
	j.prevTail = j.currentTail
	j.worldSpaceBoneLength = worldMatrix.Translation().Distance(j.currentTail)
	j.initialized = true
}

// reset はボーン回転と末端を初期状態へ戻す。
func (j *Joint) reset(s *scene.Scene) {
	bone := s.Node(j.BoneIndex)
	if bone == nil || !j.initialized {
		return
	}
	bone.Rotation = j.initialLocalRotation
	s.UpdateSubtreeWorldMatrices(j.BoneIndex)
	j.currentTail = s.WorldMatrix(j.BoneIndex).MulVec3(j.initialLocalChildPosition)
	j.prevTail = j.currentTail
}

// update は dt 秒分シミュレーションを進めてボーン回転へ反映する。
func (j *Joint) update(s *scene.Scene, dt float64) {
	if s.Node(j.BoneIndex) == nil || !j.initialized {
		return
	}
	worldPosition := s.WorldPosition(j.BoneIndex)
	parentWorldRotation := s.ParentWorldMatrix(j.BoneIndex).Rotation()

	inertia := j.currentTail.Subed(j.prevTail).MuledScalar(1 - j.Settings.DragForce)
	stiffness := parentWorldRotation.Muled(j.initialLocalRotation).MulVec3(j.boneAxis).
		MuledScalar(j.Settings.Stiffness * dt)
	external := j.Settings.GravityDir.MuledScalar(j.Settings.GravityPower * dt)

	nextTail := j.currentTail.Added(inertia).Added(stiffness).Added(external)
	nextTail = j.constrainLength(worldPosition, nextTail)
	nextTail = j.collide(s, worldPosition, nextTail)

	j.prevTail = j.currentTail
	j.currentTail = nextTail
	j.applyTailRotation(s)
}

// constrainLength は末端をボーン長の球面上へ戻す。
func (j *Joint) constrainLength(worldPosition mmath.Vec3, tail mmath.Vec3) mmath.Vec3 {
	direction := tail.Subed(worldPosition).Normalized()
	if direction.IsZero() {
		return tail
	}
	return worldPosition.Added(direction.MuledScalar(j.worldSpaceBoneLength))
}

// collide はコライダーとの衝突を解決する。
func (j *Joint) collide(s *scene.Scene, worldPosition mmath.Vec3, tail mmath.Vec3) mmath.Vec3 {
	for _, group := range j.ColliderGroups {
		if group == nil {
			continue
		}
		for _, collider := range group.Colliders {
			if collider == nil || collider.Shape == nil {
				continue
			}
			pushed, hit := collider.Shape.collide(s.WorldMatrix(collider.NodeIndex), tail, j.Settings.HitRadius)
			if hit {
				tail = j.constrainLength(worldPosition, pushed)
			}
		}
	}
	return tail
}

// applyTailRotation は現在の末端位置からボーンのローカル回転を導出する。
func (j *Joint) applyTailRotation(s *scene.Scene) {
	bone := s.Node(j.BoneIndex)
	if bone == nil || j.boneAxis.IsZero() {
		return
	}
	initialWorldInverse := s.ParentWorldMatrix(j.BoneIndex).Muled(j.initialLocalMatrix).Inverted()
	to := initialWorldInverse.MulVec3(j.currentTail).Normalized()
	if to.IsZero() {
		return
	}
	bone.Rotation = j.initialLocalRotation.Muled(mmath.NewQuaternionFromUnitVectors(j.boneAxis, to))
	s.UpdateSubtreeWorldMatrices(j.BoneIndex)
}

// RestoreDynamics は記録済みの末端位置を書き戻し、そこからシミュレーション回転を導出する。
func (j *Joint) RestoreDynamics(s *scene.Scene, currentTail mmath.Vec3, prevTail mmath.Vec3) {
	j.currentTail = currentTail
	j.prevTail = prevTail
	j.applyTailRotation(s)
}

// RestoreRotation はシミュレーション回転を直接書き戻す。末端位置は回転から再計算する。
func (j *Joint) RestoreRotation(s *scene.Scene, rotation mmath.Quaternion) {
	bone := s.Node(j.BoneIndex)
	if bone == nil {
		return
	}
	bone.Rotation = rotation
	s.UpdateSubtreeWorldMatrices(j.BoneIndex)
	j.currentTail = s.WorldMatrix(j.BoneIndex).MulVec3(j.initialLocalChildPosition)
	j.prevTail = j.currentTail
}
