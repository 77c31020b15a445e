package model

import "testing"

func TestVrmWarningIDsAreNonEmptyAndUnique(t *testing.T) {
	if VrmMigrateRawExtrasKey != "MU_VRMMIGRATE_coordinate" {
		t.Fatalf("raw extras key mismatch: got=%s want=%s", VrmMigrateRawExtrasKey, "MU_VRMMIGRATE_coordinate")
	}

	warningIDs := []string{
		VrmWarningNodeMatrixDecomposed,
		VrmWarningSpringBoneNodeMissing,
		VrmWarningColliderGroupMissing,
		VrmWarningGravityDirectionNormalized,
		VrmWarningSpringBoneUnsupportedVersion,
		VrmWarningFirstPersonBoneMissing,
	}

	seen := map[string]struct{}{}
	for _, warningID := range warningIDs {
		if warningID == "" {
			t.Fatalf("warning id should not be empty")
		}
		if _, exists := seen[warningID]; exists {
			t.Fatalf("warning id should be unique: %s", warningID)
		}
		seen[warningID] = struct{}{}
	}
}

func TestVrmModelAddWarningDeduplicates(t *testing.T) {
	modelData := NewVrmModel("a.vrm")
	modelData.AddWarning(VrmWarningNodeMatrixDecomposed)
	modelData.AddWarning(VrmWarningNodeMatrixDecomposed)
	modelData.AddWarning("")
	if len(modelData.Warnings()) != 1 {
		t.Fatalf("warnings should be unique: %v", modelData.Warnings())
	}
}

func TestVrmModelCanMigrate(t *testing.T) {
	modelData := NewVrmModel("a.vrm")
	modelData.Version = VRM_VERSION_0
	if !modelData.CanMigrate() {
		t.Fatalf("VRM0 model should be migratable")
	}
	modelData.Migrated = true
	if modelData.CanMigrate() {
		t.Fatalf("migrated model should not be migratable")
	}
	modelData.Migrated = false
	modelData.Version = VRM_VERSION_1
	if modelData.CanMigrate() {
		t.Fatalf("VRM1 model should not be migratable")
	}
}
