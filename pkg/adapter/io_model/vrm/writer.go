// 指示: miu200521358
package vrm

import (
	"encoding/json"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// writeNodeTransforms はglTFノードへローカルTRSを書き戻す。合成ノードは書き出さない。
func writeNodeTransforms(source *vrmSource, s *scene.Scene) {
	for i := 0; i < source.nodeCount && i < s.Len(); i++ {
		gltfNode := source.doc.Nodes[i]
		node := s.Node(i)
		if gltfNode == nil || node == nil || node.IsVirtual {
			continue
		}
		gltfNode.Matrix = identityMatrix
		gltfNode.Translation = [3]float32{float32(node.Position.X), float32(node.Position.Y), float32(node.Position.Z)}
		gltfNode.Rotation = toGltfRotation(node.Rotation)
		gltfNode.Scale = [3]float32{float32(node.Scale.X), float32(node.Scale.Y), float32(node.Scale.Z)}
	}
}

// toGltfRotation はクォータニオンをglTFの (x, y, z, w) 配列へ変換する。
func toGltfRotation(q mmath.Quaternion) [4]float32 {
	return [4]float32{float32(q.X()), float32(q.Y()), float32(q.Z()), float32(q.W)}
}

// writeInverseBindMatrices は逆バインド行列を書き戻す。アクセサが無いスキンには新規に追加する。
func writeInverseBindMatrices(source *vrmSource) error {
	doc := source.doc
	for skinIndex, skeleton := range source.skeletons {
		if skeleton == nil {
			continue
		}
		skin := doc.Skins[skinIndex]
		if err := skeleton.Validate(); err != nil {
			return io_common.NewIoSaveFailed("スキンの逆バインド行列が不正です: skin=%d", err, skinIndex)
		}
		if skin.InverseBindMatrices != nil {
			if err := writeMat4Accessor(doc, int(*skin.InverseBindMatrices), skeleton.InverseBindMatrices); err != nil {
				return err
			}
			continue
		}
		if isIdentityMatrices(skeleton.InverseBindMatrices) {
			continue
		}
		index := modeler.WriteAccessor(doc, gltf.TargetNone, toMat4Rows(skeleton.InverseBindMatrices))
		skin.InverseBindMatrices = gltf.Index(index)
		logVrmDebug("逆バインド行列アクセサを追加しました: skin=%d accessor=%d", skinIndex, index)
	}
	return nil
}

// isIdentityMatrices は全て単位行列か判定する。
func isIdentityMatrices(matrices []mmath.Mat4) bool {
	for _, matrix := range matrices {
		if !matrix.IsIdent() {
			return false
		}
	}
	return true
}

// writeMeshAccessors は頂点座標、法線、モーフ差分を書き戻す。共有アクセサは一度だけ書く。
func writeMeshAccessors(source *vrmSource) error {
	written := map[int]struct{}{}
	write := func(index int, vectors []mmath.Vec3) error {
		if index < 0 {
			return nil
		}
		if _, ok := written[index]; ok {
			return nil
		}
		written[index] = struct{}{}
		if err := writeVec3Accessor(source.doc, index, vectors); err != nil {
			return err
		}
		updateAccessorBounds(source.doc.Accessors[index], vectors)
		return nil
	}

	for _, binding := range source.meshes {
		mesh := binding.mesh
		if err := write(binding.positionAccessor, mesh.Positions); err != nil {
			return err
		}
		if err := write(binding.normalAccessor, mesh.Normals); err != nil {
			return err
		}
		for i, target := range binding.targets {
			if i >= len(mesh.MorphTargets) {
				break
			}
			if err := write(target.positionAccessor, mesh.MorphTargets[i].Positions); err != nil {
				return err
			}
			if err := write(target.normalAccessor, mesh.MorphTargets[i].Normals); err != nil {
				return err
			}
		}
	}
	logVrmDebug("頂点アクセサ書き戻し完了: accessors=%d", len(written))
	return nil
}

// readMigratedMarker はドキュメント extras の移行済みの印を読む。
func readMigratedMarker(doc *gltf.Document) bool {
	value := gjson.GetBytes(marshalExtras(doc.Extras), model.VrmMigrateRawExtrasKey)
	return value.Exists() && value.String() == model.VrmMigrateCoordinateValue
}

// writeMigratedMarker はドキュメント extras へ移行済みの印を書く。既存の extras は保持する。
func writeMigratedMarker(doc *gltf.Document) error {
	extras, err := sjson.SetBytes(
		marshalExtras(doc.Extras),
		model.VrmMigrateRawExtrasKey,
		model.VrmMigrateCoordinateValue,
	)
	if err != nil {
		return io_common.NewIoSaveFailed("移行済みの印の書き込みに失敗しました", err)
	}
	doc.Extras = json.RawMessage(extras)
	return nil
}
