// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"

// RecomputeInverseBindMatrices は再構築後のワールド行列から逆バインド行列を作り直す。
func RecomputeInverseBindMatrices(s *scene.Scene, skeleton *scene.Skeleton) {
	if skeleton == nil {
		return
	}
	for i, boneIndex := range skeleton.BoneIndexes {
		if i >= len(skeleton.InverseBindMatrices) {
			break
		}
		worldMatrix := s.WorldMatrix(boneIndex)
		if !worldMatrix.IsInvertible() {
			logMigrateWarn("逆バインド行列の再計算で特異行列を検出: skeleton=%s bone=%d", skeleton.Name, boneIndex)
		}
		skeleton.InverseBindMatrices[i] = worldMatrix.Inverted()
	}
}
