// 指示: miu200521358
package model

const (
	// VrmMigrateRawExtrasKey は座標系移行済みの印を保持する extras のキー。
	VrmMigrateRawExtrasKey = "MU_VRMMIGRATE_coordinate"
	// VrmMigrateCoordinateValue は移行済みの印に書き込む値。
	VrmMigrateCoordinateValue = "vrm1"

	// VrmWarningNodeMatrixDecomposed は node.matrix をTRSへ分解した警告。
	VrmWarningNodeMatrixDecomposed = "VrmWarningNodeMatrixDecomposed"
	// VrmWarningSpringBoneNodeMissing は揺れ物が参照するノード不在警告。
	VrmWarningSpringBoneNodeMissing = "VrmWarningSpringBoneNodeMissing"
	// VrmWarningColliderGroupMissing は揺れ物が参照するコライダーグループ不在警告。
	VrmWarningColliderGroupMissing = "VrmWarningColliderGroupMissing"
	// VrmWarningGravityDirectionNormalized は重力方向を正規化した警告。
	VrmWarningGravityDirectionNormalized = "VrmWarningGravityDirectionNormalized"
	// VrmWarningSpringBoneUnsupportedVersion はVRM1揺れ物の移行対象外警告。
	VrmWarningSpringBoneUnsupportedVersion = "VrmWarningSpringBoneUnsupportedVersion"
	// VrmWarningFirstPersonBoneMissing は一人称視点の基準ボーン不在警告。
	VrmWarningFirstPersonBoneMissing = "VrmWarningFirstPersonBoneMissing"
)
