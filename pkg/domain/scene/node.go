// 指示: miu200521358
// Package scene は移行処理が扱うシーングラフをアリーナ形式で提供する。
package scene

import "github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"

// NodeKind はノード種別を表す。取り込み時に一度だけ決定する。
type NodeKind int

const (
	// NodeKindGeneric はボーンでもメッシュでもないノード。
	NodeKindGeneric NodeKind = iota
	// NodeKindBone はボーンノード。
	NodeKindBone
	// NodeKindMesh はメッシュを持つノード。
	NodeKindMesh
)

// String は種別名を返す。
func (k NodeKind) String() string {
	switch k {
	case NodeKindBone:
		return "Bone"
	case NodeKindMesh:
		return "Mesh"
	default:
		return "Generic"
	}
}

// Node はシーングラフのノードを表す。親子関係はアリーナのindexで保持する。
type Node struct {
	Index        int
	Name         string
	Kind         NodeKind
	ParentIndex  int
	ChildIndexes []int
	Position     mmath.Vec3
	Rotation     mmath.Quaternion
	Scale        mmath.Vec3
	Meshes       []*SkinnedMesh
	// IsVirtual は揺れ物の軸計算用に合成した仮想末端ノードか。
	IsVirtual bool

	worldMatrix mmath.Mat4
}

// NewNode は単位変換のノードを生成する。
func NewNode(name string, kind NodeKind) *Node {
	return &Node{
		Index:       -1,
		Name:        name,
		Kind:        kind,
		ParentIndex: -1,
		Rotation:    mmath.NewQuaternion(),
		Scale:       mmath.ONE_VEC3,
		worldMatrix: mmath.NewMat4(),
	}
}

// IsBone はボーンノードか判定する。
func (n *Node) IsBone() bool {
	return n != nil && n.Kind == NodeKindBone
}

// LocalMatrix はローカル変換行列を返す。
func (n *Node) LocalMatrix() mmath.Mat4 {
	return mmath.NewMat4FromTRS(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix は最後に更新したワールド行列を返す。
func (n *Node) WorldMatrix() mmath.Mat4 {
	return n.worldMatrix
}

// WorldPosition は最後に更新したワールド座標を返す。
func (n *Node) WorldPosition() mmath.Vec3 {
	return n.worldMatrix.Translation()
}
