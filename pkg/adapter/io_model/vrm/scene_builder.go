// 指示: miu200521358
package vrm

import (
	"fmt"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/qmuntal/gltf"
	"github.com/tidwall/gjson"
)

const (
	attributePosition = "POSITION"
	attributeNormal   = "NORMAL"
	attributeJoints   = "JOINTS_0"
	attributeWeights  = "WEIGHTS_0"
)

// identityMatrix は node.matrix の既定値。
var identityMatrix = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// vrmSource は読込元glTFとシーン要素の対応を保持する。保存時の書き戻しに使う。
type vrmSource struct {
	doc *gltf.Document
	// nodeCount はglTFノード数。シーン上でこれ未満のindexがglTFノードに対応する。
	nodeCount int
	// skeletons は doc.Skins と同じ並び。
	skeletons []*scene.Skeleton
	meshes    []*meshBinding
	spring    *vrm0SpringBinding
}

// meshBinding はSkinnedMeshと頂点アクセサの対応を表す。アクセサが無い場合は-1。
type meshBinding struct {
	mesh             *scene.SkinnedMesh
	positionAccessor int
	normalAccessor   int
	targets          []morphTargetBinding
}

// morphTargetBinding はモーフ差分とアクセサの対応を表す。
type morphTargetBinding struct {
	positionAccessor int
	normalAccessor   int
}

// meshKey は同一頂点アクセサとスキンを共有するプリミティブを識別する。
type meshKey struct {
	positionAccessor int
	skin             int
}

// sceneBuilder はglTFドキュメントからシーンを構築する。
type sceneBuilder struct {
	doc           *gltf.Document
	modelData     *model.VrmModel
	parentIndexes []int
	onPrimitive   func(done int)

	source        *vrmSource
	meshesByKey   map[meshKey]*scene.SkinnedMesh
	primitiveDone int
}

// newSceneBuilder はsceneBuilderを生成する。
func newSceneBuilder(
	doc *gltf.Document,
	modelData *model.VrmModel,
	parentIndexes []int,
	onPrimitive func(done int),
) *sceneBuilder {
	return &sceneBuilder{
		doc:           doc,
		modelData:     modelData,
		parentIndexes: parentIndexes,
		onPrimitive:   onPrimitive,
		source: &vrmSource{
			doc:       doc,
			nodeCount: len(doc.Nodes),
		},
		meshesByKey: map[meshKey]*scene.SkinnedMesh{},
	}
}

// build はノード、スキン、メッシュを順に構築し、全ルートを合成ルートへ束ねる。
func (b *sceneBuilder) build() (*vrmSource, error) {
	s := b.modelData.Scene
	kinds := b.classifyNodes()
	for i, gltfNode := range b.doc.Nodes {
		node := scene.NewNode(nodeName(i, gltfNode), kinds[i])
		if gltfNode != nil {
			b.applyLocalTransform(node, gltfNode)
		}
		if _, err := s.AppendNode(node, -1); err != nil {
			return nil, io_common.NewIoParseFailed("nodeの登録に失敗しました: %d", err, i)
		}
	}
	// 子の並びはglTFの children 順に揃える。
	for parentIndex, gltfNode := range b.doc.Nodes {
		if gltfNode == nil {
			continue
		}
		for _, child := range gltfNode.Children {
			childIndex := int(child)
			if b.parentIndexes[childIndex] != parentIndex {
				continue
			}
			if err := s.SetParent(childIndex, parentIndex); err != nil {
				return nil, io_common.NewIoParseFailed("node親子関係の登録に失敗しました: %d", err, childIndex)
			}
		}
	}

	if err := b.buildSkeletons(); err != nil {
		return nil, err
	}
	if err := b.buildMeshes(); err != nil {
		return nil, err
	}

	roots := s.Roots()
	rootIndex, err := s.AppendNode(scene.NewNode(sceneRootNodeName, scene.NodeKindGeneric), -1)
	if err != nil {
		return nil, io_common.NewIoParseFailed("合成ルートの登録に失敗しました", err)
	}
	for _, root := range roots {
		if err := s.SetParent(root, rootIndex); err != nil {
			return nil, io_common.NewIoParseFailed("合成ルートへの登録に失敗しました: %d", err, root)
		}
	}
	b.modelData.RootIndex = rootIndex
	s.UpdateWorldMatrices()
	return b.source, nil
}

// classifyNodes はノード種別を判定する。
// スキンのジョイント、ヒューマノイドボーン、揺れ物とコライダーの参照先をボーンとし、
// ボーン配下でメッシュを持たないノードもボーンとする。
func (b *sceneBuilder) classifyNodes() []scene.NodeKind {
	nodeCount := len(b.doc.Nodes)
	kinds := make([]scene.NodeKind, nodeCount)
	isBone := make([]bool, nodeCount)
	markBone := func(index int) {
		if index >= 0 && index < nodeCount {
			isBone[index] = true
		}
	}
	for _, skin := range b.doc.Skins {
		if skin == nil {
			continue
		}
		for _, joint := range skin.Joints {
			markBone(int(joint))
		}
	}
	if raw, ok := extensionJSON(b.doc.Extensions, vrm0ExtensionName); ok {
		for _, node := range gjson.GetBytes(raw, "humanoid.humanBones.#.node").Array() {
			markBone(int(node.Int()))
		}
		for _, node := range gjson.GetBytes(raw, "secondaryAnimation.boneGroups.#.bones|@flatten").Array() {
			markBone(int(node.Int()))
		}
		for _, node := range gjson.GetBytes(raw, "secondaryAnimation.colliderGroups.#.node").Array() {
			markBone(int(node.Int()))
		}
	}

	for _, index := range preOrderIndexes(b.doc.Nodes, b.parentIndexes) {
		gltfNode := b.doc.Nodes[index]
		hasMesh := gltfNode != nil && gltfNode.Mesh != nil
		parent := b.parentIndexes[index]
		switch {
		case isBone[index]:
			kinds[index] = scene.NodeKindBone
		case hasMesh:
			kinds[index] = scene.NodeKindMesh
		case parent >= 0 && kinds[parent] == scene.NodeKindBone:
			kinds[index] = scene.NodeKindBone
		default:
			kinds[index] = scene.NodeKindGeneric
		}
	}
	return kinds
}

// applyLocalTransform はglTFノードのローカル変換をノードへ設定する。
// node.matrix はTRSへ分解する。
func (b *sceneBuilder) applyLocalTransform(node *scene.Node, gltfNode *gltf.Node) {
	if gltfNode.Matrix != identityMatrix && gltfNode.Matrix != [16]float32{} {
		values := [16]float64{}
		for i, v := range gltfNode.Matrix {
			values[i] = float64(v)
		}
		matrix := mmath.NewMat4FromColumnMajor(values)
		node.Position = matrix.Translation()
		node.Rotation = matrix.Rotation()
		node.Scale = matrix.Scale()
		b.modelData.AddWarning(model.VrmWarningNodeMatrixDecomposed)
		logVrmWarn("node.matrix をTRSへ分解しました: node=%s", node.Name)
		return
	}
	t := gltfNode.Translation
	node.Position = mmath.NewVec3(float64(t[0]), float64(t[1]), float64(t[2]))
	r := gltfNode.Rotation
	if r != [4]float32{} {
		node.Rotation = mmath.NewQuaternionByValues(float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])).Normalized()
	}
	sc := gltfNode.Scale
	if sc != [3]float32{} {
		node.Scale = mmath.NewVec3(float64(sc[0]), float64(sc[1]), float64(sc[2]))
	}
}

// buildSkeletons は doc.Skins からSkeletonを生成する。
func (b *sceneBuilder) buildSkeletons() error {
	b.source.skeletons = make([]*scene.Skeleton, len(b.doc.Skins))
	for skinIndex, skin := range b.doc.Skins {
		if skin == nil {
			continue
		}
		boneIndexes := make([]int, 0, len(skin.Joints))
		for _, joint := range skin.Joints {
			if int(joint) >= len(b.doc.Nodes) {
				return io_common.NewIoParseFailed("skin.joints のindexが不正です: skin=%d joint=%d", nil, skinIndex, joint)
			}
			boneIndexes = append(boneIndexes, int(joint))
		}
		name := skin.Name
		if name == "" {
			name = fmt.Sprintf("skin_%d", skinIndex)
		}
		skeleton := scene.NewSkeleton(name, boneIndexes)
		if skin.InverseBindMatrices != nil {
			inverses, err := readInverseBindMatrices(b.doc, int(*skin.InverseBindMatrices))
			if err != nil {
				return err
			}
			if len(inverses) != len(boneIndexes) {
				return io_common.NewIoParseFailed(
					"逆バインド行列数がジョイント数と一致しません: skin=%d joints=%d matrices=%d",
					nil, skinIndex, len(boneIndexes), len(inverses))
			}
			skeleton.InverseBindMatrices = inverses
		}
		b.source.skeletons[skinIndex] = skeleton
	}
	return nil
}

// buildMeshes はメッシュを持つノードへプリミティブ単位のSkinnedMeshを登録する。
// 同一頂点アクセサとスキンを共有するプリミティブは1つのSkinnedMeshにまとめる。
func (b *sceneBuilder) buildMeshes() error {
	s := b.modelData.Scene
	for nodeIndex, gltfNode := range b.doc.Nodes {
		if gltfNode == nil || gltfNode.Mesh == nil {
			continue
		}
		meshIndex := int(*gltfNode.Mesh)
		if meshIndex >= len(b.doc.Meshes) || b.doc.Meshes[meshIndex] == nil {
			return io_common.NewIoParseFailed("node.mesh のindexが不正です: node=%d mesh=%d", nil, nodeIndex, meshIndex)
		}
		if gltfNode.Skin == nil {
			logVrmWarn("スキンを持たないメッシュは頂点を移行しません: node=%s", s.Node(nodeIndex).Name)
			continue
		}
		skinIndex := int(*gltfNode.Skin)
		if skinIndex >= len(b.source.skeletons) || b.source.skeletons[skinIndex] == nil {
			return io_common.NewIoParseFailed("node.skin のindexが不正です: node=%d skin=%d", nil, nodeIndex, skinIndex)
		}
		gltfMesh := b.doc.Meshes[meshIndex]
		for primitiveIndex, primitive := range gltfMesh.Primitives {
			mesh, err := b.buildPrimitive(gltfMesh, primitiveIndex, primitive, skinIndex)
			if err != nil {
				return err
			}
			b.primitiveDone++
			if b.onPrimitive != nil {
				b.onPrimitive(b.primitiveDone)
			}
			if mesh == nil {
				continue
			}
			node := s.Node(nodeIndex)
			if !containsMesh(node.Meshes, mesh) {
				node.Meshes = append(node.Meshes, mesh)
			}
		}
	}
	return nil
}

// buildPrimitive はプリミティブからSkinnedMeshを生成する。既に生成済みなら共有する。
func (b *sceneBuilder) buildPrimitive(
	gltfMesh *gltf.Mesh,
	primitiveIndex int,
	primitive *gltf.Primitive,
	skinIndex int,
) (*scene.SkinnedMesh, error) {
	if primitive == nil {
		return nil, nil
	}
	positionAccessor, ok := primitive.Attributes[attributePosition]
	if !ok {
		return nil, nil
	}
	key := meshKey{positionAccessor: int(positionAccessor), skin: skinIndex}
	if mesh, ok := b.meshesByKey[key]; ok {
		return mesh, nil
	}

	positions, err := readVec3Accessor(b.doc, int(positionAccessor))
	if err != nil {
		return nil, err
	}
	mesh := &scene.SkinnedMesh{
		Name:      fmt.Sprintf("%s_%d", gltfMesh.Name, primitiveIndex),
		Positions: positions,
		Skeleton:  b.source.skeletons[skinIndex],
	}
	binding := &meshBinding{
		mesh:             mesh,
		positionAccessor: int(positionAccessor),
		normalAccessor:   -1,
	}
	if normalAccessor, ok := primitive.Attributes[attributeNormal]; ok {
		normals, err := readVec3Accessor(b.doc, int(normalAccessor))
		if err != nil {
			return nil, err
		}
		mesh.Normals = normals
		binding.normalAccessor = int(normalAccessor)
	}
	if jointAccessor, ok := primitive.Attributes[attributeJoints]; ok {
		if mesh.Joints, err = readJointsAccessor(b.doc, int(jointAccessor)); err != nil {
			return nil, err
		}
	}
	if weightAccessor, ok := primitive.Attributes[attributeWeights]; ok {
		if mesh.Weights, err = readWeightsAccessor(b.doc, int(weightAccessor)); err != nil {
			return nil, err
		}
	}
	targetNames := gjson.GetBytes(marshalExtras(gltfMesh.Extras), "targetNames").Array()
	for targetIndex, target := range primitive.Targets {
		morph := scene.MorphTarget{Name: fmt.Sprintf("target_%d", targetIndex)}
		if targetIndex < len(targetNames) {
			morph.Name = targetNames[targetIndex].String()
		}
		targetBinding := morphTargetBinding{positionAccessor: -1, normalAccessor: -1}
		if accessor, ok := target[attributePosition]; ok {
			if morph.Positions, err = readVec3Accessor(b.doc, int(accessor)); err != nil {
				return nil, err
			}
			targetBinding.positionAccessor = int(accessor)
		}
		if accessor, ok := target[attributeNormal]; ok {
			if morph.Normals, err = readVec3Accessor(b.doc, int(accessor)); err != nil {
				return nil, err
			}
			targetBinding.normalAccessor = int(accessor)
		}
		mesh.MorphTargets = append(mesh.MorphTargets, morph)
		binding.targets = append(binding.targets, targetBinding)
	}

	b.meshesByKey[key] = mesh
	b.source.meshes = append(b.source.meshes, binding)
	logVrmDebug("メッシュ読込: name=%s vertices=%d morphs=%d", mesh.Name, len(mesh.Positions), len(mesh.MorphTargets))
	return mesh, nil
}

// preOrderIndexes は親配列からルート毎の行きがけ順でノードindexを返す。
func preOrderIndexes(nodes []*gltf.Node, parents []int) []int {
	order := make([]int, 0, len(nodes))
	for root := range nodes {
		if parents[root] >= 0 {
			continue
		}
		stack := []int{root}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			order = append(order, current)
			if nodes[current] == nil {
				continue
			}
			children := nodes[current].Children
			for i := len(children) - 1; i >= 0; i-- {
				child := int(children[i])
				if parents[child] == current {
					stack = append(stack, child)
				}
			}
		}
	}
	return order
}

// nodeName はノード名を返す。無名の場合はindexから生成する。
func nodeName(index int, node *gltf.Node) string {
	if node == nil || node.Name == "" {
		return fmt.Sprintf("node_%d", index)
	}
	return node.Name
}

// containsMesh はメッシュ一覧に同一ポインタが含まれるか判定する。
func containsMesh(meshes []*scene.SkinnedMesh, target *scene.SkinnedMesh) bool {
	for _, mesh := range meshes {
		if mesh == target {
			return true
		}
	}
	return false
}
