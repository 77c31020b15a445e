// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/springbone"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/merr"
	"github.com/pkg/errors"
	"github.com/tiendc/go-deepcopy"
)

// tailEpsilon は末端がボーン位置と一致しているとみなす距離。
const tailEpsilon = 1e-9

// SpringJointState は1ジョイント分のシミュレーション状態を表す。
type SpringJointState struct {
	BoneIndex     int
	LocalRotation mmath.Quaternion
	CurrentTail   mmath.Vec3
	PrevTail      mmath.Vec3
	Initialized   bool
}

// SpringBoneState は揺れ物全体のシミュレーション状態を表す。
// Generation は記録時点のReset回数で、復元はそれより後のReset後に限る。
type SpringBoneState struct {
	Generation int
	Joints     map[int]SpringJointState
}

// RecordSpringBoneState は強制再初期化の前に各ジョイントのシミュレーション状態を記録する。
func RecordSpringBoneState(manager *springbone.Manager) *SpringBoneState {
	state := &SpringBoneState{Joints: map[int]SpringJointState{}}
	if manager == nil {
		return state
	}
	state.Generation = manager.ResetGeneration()
	s := manager.Scene()
	for _, joint := range manager.Joints() {
		bone := s.Node(joint.BoneIndex)
		if bone == nil {
			continue
		}
		state.Joints[joint.BoneIndex] = SpringJointState{
			BoneIndex:     joint.BoneIndex,
			LocalRotation: bone.Rotation,
			CurrentTail:   joint.CurrentTail(),
			PrevTail:      joint.PrevTail(),
			Initialized:   joint.IsInitialized(),
		}
	}
	return state
}

// Clone は独立したコピーを返す。
func (st *SpringBoneState) Clone() (*SpringBoneState, error) {
	if st == nil {
		return nil, nil
	}
	cloned := &SpringBoneState{}
	if err := deepcopy.Copy(cloned, st); err != nil {
		return nil, errors.Wrap(err, "揺れ物状態の複製に失敗しました")
	}
	return cloned, nil
}

// Rotated は末端座標と回転をY軸180度回転したコピーを返す。
func (st *SpringBoneState) Rotated() (*SpringBoneState, error) {
	rotated, err := st.Clone()
	if err != nil || rotated == nil {
		return rotated, err
	}
	for index, joint := range rotated.Joints {
		joint.CurrentTail = RotateY180(joint.CurrentTail)
		joint.PrevTail = RotateY180(joint.PrevTail)
		joint.LocalRotation = rotateY180Quaternion(joint.LocalRotation)
		rotated.Joints[index] = joint
	}
	return rotated, nil
}

// RestoreSpringBoneState は再初期化後のジョイントへ記録済みのシミュレーション状態を書き戻す。
// manager のReset が記録後に呼ばれていない場合はエラーを返す。
// 末端座標からボーン回転を導出し、末端が退化している場合は記録した回転をそのまま書き戻す。
func RestoreSpringBoneState(s *scene.Scene, manager *springbone.Manager, state *SpringBoneState) error {
	if manager == nil || state == nil {
		return nil
	}
	if manager.ResetGeneration() <= state.Generation {
		return merr.NewCommonError(
			merr.SpringRestoreOrderErrorID,
			nil,
			"揺れ物状態の復元はReset後に実行してください: recorded=%d current=%d",
			state.Generation,
			manager.ResetGeneration(),
		)
	}

	restored := 0
	for _, joint := range manager.Joints() {
		recorded, ok := state.Joints[joint.BoneIndex]
		if !ok || !recorded.Initialized || !joint.IsInitialized() {
			continue
		}
		if recorded.CurrentTail.Distance(s.WorldPosition(joint.BoneIndex)) > tailEpsilon {
			joint.RestoreDynamics(s, recorded.CurrentTail, recorded.PrevTail)
		} else {
			joint.RestoreRotation(s, recorded.LocalRotation)
		}
		restored++
	}
	logMigrateDebug("揺れ物状態を復元: joints=%d", restored)
	return nil
}
