// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
)

// skeletonMeshGroup は同一Skeletonを共有するメッシュ群を表す。
type skeletonMeshGroup struct {
	skeleton *scene.Skeleton
	meshes   []*scene.SkinnedMesh
}

// MigrateSkeleton は rootIndex 以下のスケルトンをVRM1.0の座標系へ移行する。
// スキンメッシュが無い場合はAssetErrorを返す。
// 共有Skeletonのボーンは一度だけ回転し、頂点はメッシュ毎に一度だけ回転する。
func MigrateSkeleton(s *scene.Scene, rootIndex int) MigrationResult {
	rootNode := s.Node(rootIndex)
	if rootNode == nil {
		return NewAssetError("root node %d not found", rootIndex)
	}
	meshes := s.FindSkinnedMeshes(rootIndex)
	if len(meshes) == 0 {
		return NewAssetError("no SkinnedMesh found under %q", rootNode.Name)
	}

	groups := groupMeshesBySkeleton(meshes)
	for _, group := range groups {
		if err := group.skeleton.Validate(); err != nil {
			return NewAssetError("invalid skeleton: %v", err)
		}
	}

	s.UpdateWorldMatrices()
	roots, result := collectSkeletonRoots(s, groups)
	if !result.IsOk() {
		return result
	}

	before := recordWorldPositions(s, collectMigrationBones(s, roots, groups))
	targets := before.Rotated()
	logMigrateDebug("移行対象: skeletons=%d meshes=%d roots=%v bones=%d", len(groups), len(meshes), roots, len(targets))

	for _, root := range roots {
		RebuildBoneTransforms(s, root, targets)
	}
	s.UpdateWorldMatrices()

	for _, group := range groups {
		RecomputeInverseBindMatrices(s, group.skeleton)
		for _, mesh := range group.meshes {
			RebakeVertices(mesh)
		}
	}

	logMigrateInfo("スケルトン移行完了: root=%s skeletons=%d meshes=%d bones=%d", rootNode.Name, len(groups), len(meshes), len(targets))
	return MigrationOk()
}

// groupMeshesBySkeleton はメッシュをSkeletonの同一性で出現順にまとめる。
func groupMeshesBySkeleton(meshes []*scene.SkinnedMesh) []*skeletonMeshGroup {
	groups := make([]*skeletonMeshGroup, 0)
	groupBySkeleton := map[*scene.Skeleton]*skeletonMeshGroup{}
	seenMeshes := map[*scene.SkinnedMesh]struct{}{}
	for _, mesh := range meshes {
		if mesh == nil || mesh.Skeleton == nil {
			continue
		}
		if _, ok := seenMeshes[mesh]; ok {
			continue
		}
		seenMeshes[mesh] = struct{}{}
		group, ok := groupBySkeleton[mesh.Skeleton]
		if !ok {
			group = &skeletonMeshGroup{skeleton: mesh.Skeleton}
			groupBySkeleton[mesh.Skeleton] = group
			groups = append(groups, group)
		}
		group.meshes = append(group.meshes, mesh)
	}
	return groups
}

// collectSkeletonRoots は全Skeletonのルートボーンを重複なしで返す。
// 他のルートの配下にあるルートは除外する。
func collectSkeletonRoots(s *scene.Scene, groups []*skeletonMeshGroup) ([]int, MigrationResult) {
	candidates := make([]int, 0)
	for _, group := range groups {
		roots := findRootBones(s, group.skeleton.BoneIndexes)
		if len(roots) == 0 {
			return nil, NewAssetError("skeleton %q has no bones", group.skeleton.Name)
		}
		candidates = append(candidates, roots...)
	}

	candidates = dedupeIndexes(candidates)
	roots := make([]int, 0, len(candidates))
	for _, candidate := range candidates {
		covered := false
		for _, other := range candidates {
			if other != candidate && s.IsDescendant(candidate, other) {
				covered = true
				break
			}
		}
		if !covered {
			roots = append(roots, candidate)
		}
	}
	return roots, MigrationOk()
}

// collectMigrationBones はルート配下のボーンとSkeletonのボーンの和集合を返す。
func collectMigrationBones(s *scene.Scene, roots []int, groups []*skeletonMeshGroup) []int {
	indexes := make([]int, 0)
	for _, root := range roots {
		for _, index := range s.PreOrder(root) {
			if s.IsBone(index) {
				indexes = append(indexes, index)
			}
		}
	}
	for _, group := range groups {
		indexes = append(indexes, group.skeleton.BoneIndexes...)
	}
	return dedupeIndexes(indexes)
}

// dedupeIndexes は出現順を保って重複を除く。
func dedupeIndexes(indexes []int) []int {
	seen := map[int]struct{}{}
	deduped := make([]int, 0, len(indexes))
	for _, index := range indexes {
		if _, ok := seen[index]; ok {
			continue
		}
		seen[index] = struct{}{}
		deduped = append(deduped, index)
	}
	return deduped
}
