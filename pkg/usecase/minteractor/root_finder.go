// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"

// FindRootBone は親が無いかボーンでない最初のボーンを返す。
// 候補が複数あっても一覧順で最初のものを返す。
func FindRootBone(s *scene.Scene, boneIndexes []int) (int, bool) {
	for _, index := range boneIndexes {
		if s.Node(index) == nil {
			continue
		}
		if !s.Parent(index).IsBone() {
			return index, true
		}
	}
	return -1, false
}

// findRootBones はボーン一覧を覆うルートを一覧順に全て返す。
// 親子が分断されたスケルトンでは2件以上になる。
func findRootBones(s *scene.Scene, boneIndexes []int) []int {
	roots := make([]int, 0)
	remaining := append([]int{}, boneIndexes...)
	for len(remaining) > 0 {
		root, ok := FindRootBone(s, remaining)
		if !ok {
			root, ok = topBoneAncestor(s, remaining)
			if !ok {
				break
			}
		}
		roots = append(roots, root)
		kept := remaining[:0]
		for _, index := range remaining {
			if !s.IsDescendant(index, root) {
				kept = append(kept, index)
			}
		}
		remaining = kept
	}
	return roots
}

// topBoneAncestor は一覧先頭の有効なボーンから親ボーンを辿った最上位のボーンを返す。
func topBoneAncestor(s *scene.Scene, boneIndexes []int) (int, bool) {
	for _, index := range boneIndexes {
		if s.Node(index) == nil {
			continue
		}
		current := index
		for steps := 0; s.Parent(current).IsBone() && steps < s.Len(); steps++ {
			current = s.Parent(current).Index
		}
		return current, true
	}
	return -1, false
}
