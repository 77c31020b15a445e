// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/tiendc/go-deepcopy"
)

// BoneWorldPositions はノードindexごとのワールド座標スナップショット。
type BoneWorldPositions map[int]mmath.Vec3

// RecordBoneWorldPositions はスケルトンの各ボーンのワールド座標を記録する。
// ワールド行列は更新済みであること。
func RecordBoneWorldPositions(s *scene.Scene, skeleton *scene.Skeleton) BoneWorldPositions {
	if skeleton == nil {
		return BoneWorldPositions{}
	}
	return recordWorldPositions(s, skeleton.BoneIndexes)
}

// recordWorldPositions は指定ノードのワールド座標を記録する。
func recordWorldPositions(s *scene.Scene, indexes []int) BoneWorldPositions {
	positions := BoneWorldPositions{}
	for _, index := range indexes {
		if s.Node(index) == nil {
			continue
		}
		positions[index] = s.WorldPosition(index)
	}
	return positions
}

// Clone は独立したコピーを返す。
func (p BoneWorldPositions) Clone() BoneWorldPositions {
	cloned := BoneWorldPositions{}
	if err := deepcopy.Copy(&cloned, p); err != nil {
		for index, position := range p {
			cloned[index] = position
		}
	}
	return cloned
}

// Rotated はY軸180度回転した座標のコピーを返す。
func (p BoneWorldPositions) Rotated() BoneWorldPositions {
	rotated := p.Clone()
	for index, position := range rotated {
		rotated[index] = RotateY180(position)
	}
	return rotated
}
