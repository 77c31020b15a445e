// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"

// RebakeVertices はスキニング前の頂点座標をY軸180度回転する。
// 法線とモーフ差分も同じ変換に従う。
func RebakeVertices(mesh *scene.SkinnedMesh) {
	if mesh == nil {
		return
	}
	rotateY180Vectors(mesh.Positions)
	rotateY180Vectors(mesh.Normals)
	for i := range mesh.MorphTargets {
		rotateY180Vectors(mesh.MorphTargets[i].Positions)
		rotateY180Vectors(mesh.MorphTargets[i].Normals)
	}
}
