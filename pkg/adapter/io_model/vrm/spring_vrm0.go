// 指示: miu200521358
package vrm

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/springbone"
	"github.com/qmuntal/gltf"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// vrm0SpringBinding は secondaryAnimation の要素と揺れ物の対応を表す。
type vrm0SpringBinding struct {
	// boneGroups は boneGroups と同じ並びで、各グループから生成したジョイントを持つ。
	boneGroups [][]*springbone.Joint
	// gravityScales は正規化前の重力方向の長さ。書き戻し時に元の長さへ戻す。
	gravityScales []float64
	colliders     []vrm0ColliderBinding
}

// vrm0ColliderBinding はコライダーと secondaryAnimation 上の位置の対応を表す。
type vrm0ColliderBinding struct {
	groupIndex    int
	colliderIndex int
	collider      *springbone.Collider
}

// vrm0Vec3 は secondaryAnimation のベクトルをglTF空間へ変換する。VRM0の揺れ物設定はZ軸が反転している。
func vrm0Vec3(value gjson.Result) mmath.Vec3 {
	return mmath.NewVec3(value.Get("x").Float(), value.Get("y").Float(), -value.Get("z").Float())
}

// loadSpringBones はVRM0の secondaryAnimation から揺れ物を構築し、初期状態を確定する。
func loadSpringBones(doc *gltf.Document, modelData *model.VrmModel, source *vrmSource) error {
	if modelData.Version != model.VRM_VERSION_0 {
		if _, ok := extensionJSON(doc.Extensions, vrm1SpringExtensionName); ok {
			modelData.AddWarning(model.VrmWarningSpringBoneUnsupportedVersion)
		}
		return nil
	}
	raw, ok := extensionJSON(doc.Extensions, vrm0ExtensionName)
	if !ok {
		return nil
	}
	if !gjson.ValidBytes(raw) {
		return io_common.NewIoParseFailed("VRM0拡張のJSON解析に失敗しました", nil)
	}
	secondary := gjson.GetBytes(raw, "secondaryAnimation")
	if !secondary.Exists() {
		return nil
	}

	s := modelData.Scene
	manager := springbone.NewManager(s)
	binding := &vrm0SpringBinding{}

	groups := make([]*springbone.ColliderGroup, 0)
	for groupIndex, groupValue := range secondary.Get("colliderGroups").Array() {
		group := &springbone.ColliderGroup{Name: fmt.Sprintf("colliderGroup_%d", groupIndex)}
		groups = append(groups, group)
		nodeIndex := int(groupValue.Get("node").Int())
		if !isSourceNode(source, nodeIndex) {
			modelData.AddWarning(model.VrmWarningSpringBoneNodeMissing)
			logVrmWarn("コライダーグループの参照ノードがありません: group=%d node=%d", groupIndex, nodeIndex)
			continue
		}
		for colliderIndex, colliderValue := range groupValue.Get("colliders").Array() {
			collider := &springbone.Collider{
				NodeIndex: nodeIndex,
				Shape: &springbone.SphereShape{
					Offset: vrm0Vec3(colliderValue.Get("offset")),
					Radius: colliderValue.Get("radius").Float(),
				},
			}
			group.Colliders = append(group.Colliders, collider)
			binding.colliders = append(binding.colliders, vrm0ColliderBinding{
				groupIndex:    groupIndex,
				colliderIndex: colliderIndex,
				collider:      collider,
			})
		}
		manager.AddColliderGroup(group)
	}

	jointedBones := map[int]struct{}{}
	for groupIndex, groupValue := range secondary.Get("boneGroups").Array() {
		gravityDir, gravityScale := normalizeGravityDir(modelData, vrm0Vec3(groupValue.Get("gravityDir")))
		settings := springbone.JointSettings{
			// VRM0 の綴りは stiffiness。
			Stiffness:    groupValue.Get("stiffiness").Float(),
			GravityPower: groupValue.Get("gravityPower").Float(),
			GravityDir:   gravityDir,
			DragForce:    groupValue.Get("dragForce").Float(),
			HitRadius:    groupValue.Get("hitRadius").Float(),
		}
		colliderGroups := make([]*springbone.ColliderGroup, 0)
		for _, groupRef := range groupValue.Get("colliderGroups").Array() {
			ref := int(groupRef.Int())
			if ref < 0 || ref >= len(groups) {
				modelData.AddWarning(model.VrmWarningColliderGroupMissing)
				logVrmWarn("揺れ物の参照コライダーグループがありません: boneGroup=%d colliderGroup=%d", groupIndex, ref)
				continue
			}
			colliderGroups = append(colliderGroups, groups[ref])
		}

		joints := make([]*springbone.Joint, 0)
		for _, boneValue := range groupValue.Get("bones").Array() {
			rootBone := int(boneValue.Int())
			if !isSourceNode(source, rootBone) {
				modelData.AddWarning(model.VrmWarningSpringBoneNodeMissing)
				logVrmWarn("揺れ物の参照ノードがありません: boneGroup=%d node=%d", groupIndex, rootBone)
				continue
			}
			for _, boneIndex := range s.PreOrder(rootBone) {
				if !s.IsBone(boneIndex) {
					continue
				}
				if _, ok := jointedBones[boneIndex]; ok {
					continue
				}
				jointedBones[boneIndex] = struct{}{}
				joint := springbone.NewJoint(boneIndex, firstChildBone(s, boneIndex), settings)
				joint.ColliderGroups = append(joint.ColliderGroups, colliderGroups...)
				manager.AddJoint(joint)
				joints = append(joints, joint)
			}
		}
		binding.boneGroups = append(binding.boneGroups, joints)
		binding.gravityScales = append(binding.gravityScales, gravityScale)
	}

	manager.SetInitState()
	modelData.SpringBones = manager
	source.spring = binding
	logVrmInfo("VRM読込ステップ: 揺れ物構築完了 joints=%d colliderGroups=%d colliders=%d",
		len(manager.Joints()), len(manager.ColliderGroups()), len(manager.Colliders()))
	return nil
}

// normalizeGravityDir は重力方向を単位ベクトルへ正規化し、元の長さとの倍率を返す。
// ゼロベクトルと単位ベクトルはそのまま返す。
func normalizeGravityDir(modelData *model.VrmModel, dir mmath.Vec3) (mmath.Vec3, float64) {
	length := dir.Length()
	if length == 0 || math.Abs(length-1) < 1e-6 {
		return dir, 1
	}
	modelData.AddWarning(model.VrmWarningGravityDirectionNormalized)
	return dir.Normalized(), length
}

// firstChildBone は最初の子ボーンを返す。無い場合は-1。
func firstChildBone(s *scene.Scene, boneIndex int) int {
	node := s.Node(boneIndex)
	if node == nil {
		return -1
	}
	for _, child := range node.ChildIndexes {
		if s.IsBone(child) {
			return child
		}
	}
	return -1
}

// isSourceNode はglTFノードに対応するindexか判定する。
func isSourceNode(source *vrmSource, index int) bool {
	return index >= 0 && index < source.nodeCount
}

// writeSpringBones は移行後の重力方向とコライダーオフセットを secondaryAnimation へ書き戻す。
func writeSpringBones(source *vrmSource) error {
	if source.spring == nil {
		return nil
	}
	raw, ok := extensionJSON(source.doc.Extensions, vrm0ExtensionName)
	if !ok {
		return nil
	}

	var err error
	for groupIndex, joints := range source.spring.boneGroups {
		if len(joints) == 0 {
			continue
		}
		gravityDir := joints[0].Settings.GravityDir
		if groupIndex < len(source.spring.gravityScales) {
			gravityDir = gravityDir.MuledScalar(source.spring.gravityScales[groupIndex])
		}
		path := fmt.Sprintf("secondaryAnimation.boneGroups.%d.gravityDir", groupIndex)
		if raw, err = setVrm0Vec3(raw, path, gravityDir); err != nil {
			return io_common.NewIoSaveFailed("重力方向の書き込みに失敗しました: boneGroup=%d", err, groupIndex)
		}
	}
	for _, colliderBinding := range source.spring.colliders {
		sphere, ok := colliderBinding.collider.Shape.(*springbone.SphereShape)
		if !ok {
			continue
		}
		path := fmt.Sprintf("secondaryAnimation.colliderGroups.%d.colliders.%d.offset",
			colliderBinding.groupIndex, colliderBinding.colliderIndex)
		if raw, err = setVrm0Vec3(raw, path, sphere.Offset); err != nil {
			return io_common.NewIoSaveFailed("コライダーオフセットの書き込みに失敗しました: group=%d collider=%d",
				err, colliderBinding.groupIndex, colliderBinding.colliderIndex)
		}
	}
	source.doc.Extensions[vrm0ExtensionName] = json.RawMessage(raw)
	return nil
}

// setVrm0Vec3 はglTF空間のベクトルを secondaryAnimation の表現で書き込む。
func setVrm0Vec3(raw []byte, path string, v mmath.Vec3) ([]byte, error) {
	var err error
	if raw, err = sjson.SetBytes(raw, path+".x", v.X); err != nil {
		return nil, err
	}
	if raw, err = sjson.SetBytes(raw, path+".y", v.Y); err != nil {
		return nil, err
	}
	z := -v.Z
	// 負のゼロを書かない。
	if z == 0 {
		z = 0
	}
	return sjson.SetBytes(raw, path+".z", z)
}
