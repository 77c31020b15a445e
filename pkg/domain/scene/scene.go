// 指示: miu200521358
package scene

import (
	"fmt"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
)

// Scene はノードのアリーナを表す。ノードのindexはアリーナ内位置と一致する。
type Scene struct {
	nodes []*Node
}

// NewScene は空のSceneを生成する。
func NewScene() *Scene {
	return &Scene{nodes: make([]*Node, 0)}
}

// Len はノード数を返す。
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Nodes はノード一覧を返す。
func (s *Scene) Nodes() []*Node {
	return s.nodes
}

// Node はindexのノードを返す。範囲外はnil。
func (s *Scene) Node(index int) *Node {
	if s == nil || index < 0 || index >= len(s.nodes) {
		return nil
	}
	return s.nodes[index]
}

// AppendNode はノードを末尾へ追加し、親が指定されていれば子として登録する。
func (s *Scene) AppendNode(node *Node, parentIndex int) (int, error) {
	if node == nil {
		return -1, fmt.Errorf("node is nil")
	}
	if parentIndex >= len(s.nodes) {
		return -1, fmt.Errorf("parent index out of range: %d", parentIndex)
	}
	node.Index = len(s.nodes)
	node.ParentIndex = -1
	s.nodes = append(s.nodes, node)
	if parentIndex >= 0 {
		if err := s.SetParent(node.Index, parentIndex); err != nil {
			return -1, err
		}
	}
	return node.Index, nil
}

// SetParent は親子関係を設定する。既存の親からは切り離す。
func (s *Scene) SetParent(childIndex int, parentIndex int) error {
	child := s.Node(childIndex)
	if child == nil {
		return fmt.Errorf("child index out of range: %d", childIndex)
	}
	if parentIndex >= 0 {
		if s.Node(parentIndex) == nil {
			return fmt.Errorf("parent index out of range: %d", parentIndex)
		}
		if s.IsDescendant(parentIndex, childIndex) {
			return fmt.Errorf("cyclic parent: child=%d parent=%d", childIndex, parentIndex)
		}
	}
	s.detach(childIndex)
	child.ParentIndex = parentIndex
	if parentIndex >= 0 {
		parent := s.nodes[parentIndex]
		parent.ChildIndexes = append(parent.ChildIndexes, childIndex)
	}
	return nil
}

// detach は親の子一覧からノードを外す。
func (s *Scene) detach(childIndex int) {
	child := s.Node(childIndex)
	if child == nil || child.ParentIndex < 0 {
		return
	}
	parent := s.Node(child.ParentIndex)
	if parent != nil {
		kept := parent.ChildIndexes[:0]
		for _, idx := range parent.ChildIndexes {
			if idx != childIndex {
				kept = append(kept, idx)
			}
		}
		parent.ChildIndexes = kept
	}
	child.ParentIndex = -1
}

// Parent は親ノードを返す。無い場合はnil。
func (s *Scene) Parent(index int) *Node {
	node := s.Node(index)
	if node == nil {
		return nil
	}
	return s.Node(node.ParentIndex)
}

// IsBone はindexのノードがボーンか判定する。
func (s *Scene) IsBone(index int) bool {
	return s.Node(index).IsBone()
}

// IsDescendant は index が ancestorIndex 自身またはその子孫か判定する。
func (s *Scene) IsDescendant(index int, ancestorIndex int) bool {
	current := index
	for steps := 0; current >= 0 && steps <= len(s.nodes); steps++ {
		if current == ancestorIndex {
			return true
		}
		node := s.Node(current)
		if node == nil {
			return false
		}
		current = node.ParentIndex
	}
	return false
}

// Depth はルートからの深さを返す。
func (s *Scene) Depth(index int) int {
	depth := 0
	node := s.Node(index)
	for node != nil && node.ParentIndex >= 0 && depth <= len(s.nodes) {
		depth++
		node = s.Node(node.ParentIndex)
	}
	return depth
}

// Roots は親を持たないノードのindexをアリーナ順で返す。
func (s *Scene) Roots() []int {
	roots := make([]int, 0)
	for _, node := range s.nodes {
		if node.ParentIndex < 0 {
			roots = append(roots, node.Index)
		}
	}
	return roots
}

// PreOrder は rootIndex 以下を行きがけ順で返す。子は登録順に並ぶ。
func (s *Scene) PreOrder(rootIndex int) []int {
	if s.Node(rootIndex) == nil {
		return nil
	}
	order := make([]int, 0)
	stack := []int{rootIndex}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, current)
		children := s.nodes[current].ChildIndexes
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return order
}

// FindByName は名前が一致する最初のノードを返す。
func (s *Scene) FindByName(name string) (*Node, bool) {
	for _, node := range s.nodes {
		if node.Name == name {
			return node, true
		}
	}
	return nil, false
}

// FindSkinnedMeshes は rootIndex 以下のスキンメッシュを行きがけ順で返す。
func (s *Scene) FindSkinnedMeshes(rootIndex int) []*SkinnedMesh {
	meshes := make([]*SkinnedMesh, 0)
	for _, index := range s.PreOrder(rootIndex) {
		node := s.nodes[index]
		if node.Kind != NodeKindMesh {
			continue
		}
		for _, mesh := range node.Meshes {
			if mesh != nil && mesh.Skeleton != nil {
				meshes = append(meshes, mesh)
			}
		}
	}
	return meshes
}

// UpdateWorldMatrices は全ノードのワールド行列を親から順に更新する。
func (s *Scene) UpdateWorldMatrices() {
	for _, rootIndex := range s.Roots() {
		s.UpdateSubtreeWorldMatrices(rootIndex)
	}
}

// UpdateSubtreeWorldMatrices は index 以下のワールド行列を更新する。index の親は更新済みであること。
func (s *Scene) UpdateSubtreeWorldMatrices(index int) {
	for _, current := range s.PreOrder(index) {
		s.UpdateNodeWorldMatrix(current)
	}
}

// UpdateNodeWorldMatrix は1ノードのワールド行列を親のワールド行列から更新する。
func (s *Scene) UpdateNodeWorldMatrix(index int) {
	node := s.Node(index)
	if node == nil {
		return
	}
	node.worldMatrix = s.ParentWorldMatrix(index).Muled(node.LocalMatrix())
}

// ParentWorldMatrix は親のワールド行列を返す。親が無い場合は単位行列。
func (s *Scene) ParentWorldMatrix(index int) mmath.Mat4 {
	parent := s.Parent(index)
	if parent == nil {
		return mmath.NewMat4()
	}
	return parent.worldMatrix
}

// WorldMatrix はノードのワールド行列を返す。
func (s *Scene) WorldMatrix(index int) mmath.Mat4 {
	node := s.Node(index)
	if node == nil {
		return mmath.NewMat4()
	}
	return node.worldMatrix
}

// WorldPosition はノードのワールド座標を返す。
func (s *Scene) WorldPosition(index int) mmath.Vec3 {
	return s.WorldMatrix(index).Translation()
}

// TruncateVirtualNodes は length 以降に追加された仮想ノードを取り除く。
// 取り除くノードが仮想ノードでない場合はエラーを返し、何も変更しない。
func (s *Scene) TruncateVirtualNodes(length int) error {
	if length < 0 || length > len(s.nodes) {
		return fmt.Errorf("truncate length out of range: %d", length)
	}
	for _, node := range s.nodes[length:] {
		if !node.IsVirtual {
			return fmt.Errorf("node %q is not virtual", node.Name)
		}
	}
	for i := len(s.nodes) - 1; i >= length; i-- {
		s.detach(i)
	}
	s.nodes = s.nodes[:length]
	return nil
}
