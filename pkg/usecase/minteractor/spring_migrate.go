// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/springbone"
	"github.com/pkg/errors"
)

// colliderFrame はコライダーノードの移行前ワールド行列を表す。
type colliderFrame struct {
	collider    *springbone.Collider
	worldMatrix mmath.Mat4
}

// MigrateSpringBones は揺れ物設定を含めてスケルトンを移行する。
// 移行前のシミュレーション状態を記録し、再初期化後に書き戻す。
// 構造不備は MigrationResult で返し、処理順序の破綻のみ error で返す。
func MigrateSpringBones(s *scene.Scene, rootIndex int, manager *springbone.Manager) (MigrationResult, error) {
	if manager == nil {
		return MigrateSkeleton(s, rootIndex), nil
	}
	if result := checkSpringBonePreconditions(s, rootIndex, manager); !result.IsOk() {
		return result, nil
	}

	state := RecordSpringBoneState(manager)
	// レストポーズで移行するため、シミュレーション中の回転を一旦初期状態へ戻す。
	manager.Reset()
	plans := PlanVirtualTails(s, manager)
	frames := captureColliderFrames(s, manager.Colliders())

	result := MigrateSkeleton(s, rootIndex)
	if !result.IsOk() {
		// スケルトンは未変更のため、記録した状態をそのまま戻す。
		manager.Reset()
		if err := RestoreSpringBoneState(s, manager, state); err != nil {
			return result, err
		}
		return result, nil
	}

	tails, err := SynthesizeVirtualTails(s, plans)
	if err != nil {
		return MigrationOk(), err
	}
	RotateGravityDirections(manager.Joints())
	migrateColliderOffsets(s, frames)

	manager.SetInitState()
	manager.Reset()
	if err := DiscardVirtualTails(s, tails); err != nil {
		return MigrationOk(), errors.Wrap(err, "仮想末端の破棄に失敗しました")
	}

	rotatedState, err := state.Rotated()
	if err != nil {
		return MigrationOk(), err
	}
	if err := RestoreSpringBoneState(s, manager, rotatedState); err != nil {
		return MigrationOk(), err
	}

	logMigrateInfo("揺れ物移行完了: joints=%d colliders=%d virtualTails=%d", len(manager.Joints()), len(frames), len(plans))
	return MigrationOk(), nil
}

// checkSpringBonePreconditions はジョイントとコライダーが移行対象の階層にあるか検証する。
// ジョイントはボーンに限る。コライダーは階層内であればボーン以外のノードでもよい。
func checkSpringBonePreconditions(s *scene.Scene, rootIndex int, manager *springbone.Manager) MigrationResult {
	for _, joint := range manager.Joints() {
		if !s.IsBone(joint.BoneIndex) || !s.IsDescendant(joint.BoneIndex, rootIndex) {
			return NewAssetError("spring joint bone %d is outside the migrated hierarchy", joint.BoneIndex)
		}
	}
	for _, collider := range manager.Colliders() {
		if s.Node(collider.NodeIndex) == nil || !s.IsDescendant(collider.NodeIndex, rootIndex) {
			return NewAssetError("collider node %d is outside the migrated hierarchy", collider.NodeIndex)
		}
	}
	return MigrationOk()
}

// captureColliderFrames はコライダーノードの移行前ワールド行列を記録する。
func captureColliderFrames(s *scene.Scene, colliders []*springbone.Collider) []colliderFrame {
	frames := make([]colliderFrame, 0, len(colliders))
	for _, collider := range colliders {
		frames = append(frames, colliderFrame{
			collider:    collider,
			worldMatrix: s.WorldMatrix(collider.NodeIndex),
		})
	}
	return frames
}

// migrateColliderOffsets はコライダーオフセットを移行後のノード座標系で表し直す。
// 移行前の軸でワールド方向へ直し、Y軸180度回転してから移行後の軸へ戻す。
func migrateColliderOffsets(s *scene.Scene, frames []colliderFrame) {
	colliders := make([]*springbone.Collider, 0, len(frames))
	for _, frame := range frames {
		transformColliderShape(frame.collider, frame.worldMatrix)
		colliders = append(colliders, frame.collider)
	}
	RotateColliderOffsets(colliders)
	for _, collider := range colliders {
		transformColliderShape(collider, s.WorldMatrix(collider.NodeIndex).Inverted())
	}
}

// transformColliderShape はオフセットを行列の線形部分で変換する。
func transformColliderShape(collider *springbone.Collider, matrix mmath.Mat4) {
	switch shape := collider.Shape.(type) {
	case *springbone.SphereShape:
		shape.Offset = matrix.MulDirection(shape.Offset)
	case *springbone.CapsuleShape:
		shape.Offset = matrix.MulDirection(shape.Offset)
		shape.Tail = matrix.MulDirection(shape.Tail)
	}
}
