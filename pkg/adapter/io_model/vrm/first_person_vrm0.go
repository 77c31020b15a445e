// 指示: miu200521358
package vrm

import (
	"encoding/json"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/qmuntal/gltf"
	"github.com/tidwall/gjson"
)

const (
	firstPersonBonePath   = "firstPerson.firstPersonBone"
	firstPersonOffsetPath = "firstPerson.firstPersonBoneOffset"
)

// loadFirstPerson はVRM0の一人称視点の基準ボーンとオフセットを読み込む。
// lookAt の設定は角度の対応表のため座標変換の対象にしない。
func loadFirstPerson(doc *gltf.Document, modelData *model.VrmModel, source *vrmSource) {
	if modelData.Version != model.VRM_VERSION_0 {
		return
	}
	raw, ok := extensionJSON(doc.Extensions, vrm0ExtensionName)
	if !ok {
		return
	}
	bone := gjson.GetBytes(raw, firstPersonBonePath)
	offset := gjson.GetBytes(raw, firstPersonOffsetPath)
	if !bone.Exists() || !offset.Exists() {
		return
	}
	boneIndex := int(bone.Int())
	if !isSourceNode(source, boneIndex) {
		modelData.AddWarning(model.VrmWarningFirstPersonBoneMissing)
		logVrmWarn("一人称視点の基準ボーンがありません: node=%d", boneIndex)
		return
	}
	modelData.FirstPerson = &model.VrmFirstPerson{
		BoneIndex: boneIndex,
		Offset:    vrm0Vec3(offset),
	}
}

// writeFirstPerson は移行後の一人称オフセットを書き戻す。
func writeFirstPerson(source *vrmSource, modelData *model.VrmModel) error {
	if modelData.FirstPerson == nil {
		return nil
	}
	raw, ok := extensionJSON(source.doc.Extensions, vrm0ExtensionName)
	if !ok || !gjson.GetBytes(raw, firstPersonOffsetPath).Exists() {
		return nil
	}
	raw, err := setVrm0Vec3(raw, firstPersonOffsetPath, modelData.FirstPerson.Offset)
	if err != nil {
		return io_common.NewIoSaveFailed("一人称オフセットの書き込みに失敗しました", err)
	}
	source.doc.Extensions[vrm0ExtensionName] = json.RawMessage(raw)
	return nil
}
