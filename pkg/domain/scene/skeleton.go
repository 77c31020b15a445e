// 指示: miu200521358
package scene

import (
	"fmt"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
)

// Skeleton はボーン参照と逆バインド行列の組を表す。ボーン自体はSceneが所有する。
type Skeleton struct {
	Name                string
	BoneIndexes         []int
	InverseBindMatrices []mmath.Mat4
}

// NewSkeleton はボーン一覧から逆バインド行列を単位行列で初期化したSkeletonを生成する。
func NewSkeleton(name string, boneIndexes []int) *Skeleton {
	inverses := make([]mmath.Mat4, len(boneIndexes))
	for i := range inverses {
		inverses[i] = mmath.NewMat4()
	}
	return &Skeleton{
		Name:                name,
		BoneIndexes:         append([]int{}, boneIndexes...),
		InverseBindMatrices: inverses,
	}
}

// Validate はボーン数と逆バインド行列数が一致するか検証する。
func (s *Skeleton) Validate() error {
	if s == nil {
		return fmt.Errorf("skeleton is nil")
	}
	if len(s.BoneIndexes) != len(s.InverseBindMatrices) {
		return fmt.Errorf(
			"skeleton %q: bones=%d inverseBindMatrices=%d",
			s.Name,
			len(s.BoneIndexes),
			len(s.InverseBindMatrices),
		)
	}
	return nil
}

// SkinnedMesh はSkeletonに結び付いた頂点バッファを表す。
type SkinnedMesh struct {
	Name string
	// Positions はスキニング前のバインドポーズ頂点座標。
	Positions []mmath.Vec3
	// Normals はバインドポーズ頂点法線。無い場合は空。
	Normals []mmath.Vec3
	Joints  [][4]int
	Weights [][4]float64
	// MorphTargets はモーフ毎の頂点差分。
	MorphTargets []MorphTarget
	Skeleton     *Skeleton
}

// MorphTarget はモーフターゲットの差分を表す。
type MorphTarget struct {
	Name      string
	Positions []mmath.Vec3
	Normals   []mmath.Vec3
}

// SkinnedVertex はバインド行列と現在のボーン行列で頂点をスキニングした座標を返す。
func (s *Scene) SkinnedVertex(mesh *SkinnedMesh, vertexIndex int) mmath.Vec3 {
	if mesh == nil || mesh.Skeleton == nil || vertexIndex < 0 || vertexIndex >= len(mesh.Positions) {
		return mmath.ZERO_VEC3
	}
	position := mesh.Positions[vertexIndex]
	if vertexIndex >= len(mesh.Joints) || vertexIndex >= len(mesh.Weights) {
		return position
	}
	skinned := mmath.ZERO_VEC3
	totalWeight := 0.0
	for i := 0; i < 4; i++ {
		weight := mesh.Weights[vertexIndex][i]
		jointSlot := mesh.Joints[vertexIndex][i]
		if weight == 0 || jointSlot < 0 || jointSlot >= len(mesh.Skeleton.BoneIndexes) {
			continue
		}
		bone := s.Node(mesh.Skeleton.BoneIndexes[jointSlot])
		if bone == nil {
			continue
		}
		skinMatrix := bone.WorldMatrix().Muled(mesh.Skeleton.InverseBindMatrices[jointSlot])
		skinned = skinned.Added(skinMatrix.MulVec3(position).MuledScalar(weight))
		totalWeight += weight
	}
	if totalWeight == 0 {
		return position
	}
	return skinned.MuledScalar(1 / totalWeight)
}
