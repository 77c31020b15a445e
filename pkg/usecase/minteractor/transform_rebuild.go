// 指示: miu200521358
package minteractor

import (
	"math"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
)

// rotateY180Matrix はY軸180度回転の行列。
var rotateY180Matrix = mmath.NewQuaternionFromAxisAngle(mmath.UNIT_Y_VEC3, math.Pi).ToMat4()

// RebuildBoneTransforms は rootIndex 以下のボーンを目標ワールド座標へ配置し直す。
// 行きがけ順に親のワールド行列を確定させながら、ローカル位置を
// inverse(親ワールド行列)・目標座標 とし、ローカル回転を単位回転にする。スケールは変更しない。
// 目標に無いボーンは現在のワールド座標をY軸180度回転した位置へ置く。
// ボーン配下のボーン以外のノードは、移行前のワールド変換をY軸180度回転した姿勢へ置く。
func RebuildBoneTransforms(s *scene.Scene, rootIndex int, targets BoneWorldPositions) {
	attached := recordAttachedWorldMatrices(s, rootIndex)
	for _, index := range s.PreOrder(rootIndex) {
		node := s.Node(index)
		if node.IsBone() {
			target, ok := targets[index]
			if !ok {
				// 未更新ノードのワールド行列は移行前の値を保持している。
				target = RotateY180(node.WorldPosition())
			}
			node.Position = s.ParentWorldMatrix(index).Inverted().MulVec3(target)
			node.Rotation = mmath.NewQuaternion()
		} else if worldMatrix, ok := attached[index]; ok {
			local := s.ParentWorldMatrix(index).Inverted().Muled(rotateY180Matrix.Muled(worldMatrix))
			node.Position = local.Translation()
			node.Rotation = local.Rotation()
			node.Scale = local.Scale()
		}
		s.UpdateNodeWorldMatrix(index)
	}
	s.UpdateSubtreeWorldMatrices(rootIndex)
}

// recordAttachedWorldMatrices はボーン配下にあるボーン以外のノードの移行前ワールド行列を記録する。
func recordAttachedWorldMatrices(s *scene.Scene, rootIndex int) map[int]mmath.Mat4 {
	matrices := map[int]mmath.Mat4{}
	for _, index := range s.PreOrder(rootIndex) {
		if index == rootIndex || s.IsBone(index) {
			continue
		}
		parentIndex := s.Node(index).ParentIndex
		if _, ok := matrices[parentIndex]; !ok && !s.IsBone(parentIndex) {
			continue
		}
		matrices[index] = s.WorldMatrix(index)
	}
	return matrices
}
