// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
)

// firstPersonFrame は一人称オフセットの基準ボーンの移行前ワールド行列を表す。
type firstPersonFrame struct {
	firstPerson *model.VrmFirstPerson
	worldMatrix mmath.Mat4
}

// captureFirstPersonFrame は基準ボーンの移行前ワールド行列を記録する。基準ボーンが無い場合はnil。
func captureFirstPersonFrame(s *scene.Scene, firstPerson *model.VrmFirstPerson) *firstPersonFrame {
	if firstPerson == nil || s.Node(firstPerson.BoneIndex) == nil {
		return nil
	}
	s.UpdateWorldMatrices()
	return &firstPersonFrame{
		firstPerson: firstPerson,
		worldMatrix: s.WorldMatrix(firstPerson.BoneIndex),
	}
}

// migrate はボーンローカルのオフセットを移行後のボーン座標系で表し直す。
// コライダーオフセットと同じく、移行前の軸でワールド方向へ直してY軸180度回転し、移行後の軸へ戻す。
func (f *firstPersonFrame) migrate(s *scene.Scene) {
	if f == nil {
		return
	}
	worldOffset := RotateY180(f.worldMatrix.MulDirection(f.firstPerson.Offset))
	f.firstPerson.Offset = s.WorldMatrix(f.firstPerson.BoneIndex).Inverted().MulDirection(worldOffset)
}
