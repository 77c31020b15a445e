// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/config"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/logging"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/merr"
)

// Migrate はVRM0.x入力を読み込み、VRM1.0座標系へ移行して保存する。
func (uc *VrmMigrateUsecase) Migrate(request MigrateRequest) (*MigrateResult, error) {
	inputPath := strings.TrimSpace(request.InputPath)
	if inputPath == "" {
		return nil, fmt.Errorf("入力VRMパスが未指定です")
	}
	if !strings.EqualFold(filepath.Ext(inputPath), ".vrm") {
		return nil, fmt.Errorf("入力拡張子が .vrm ではありません: %s", inputPath)
	}
	reportMigrateProgress(request.ProgressReporter, MigrateProgressEvent{Type: MigrateProgressEventTypeInputValidated})

	outputPath, err := ResolveOutputPath(inputPath, request.OutputPath, request.OutputSuffix)
	if err != nil {
		return nil, err
	}
	reportMigrateProgress(request.ProgressReporter, MigrateProgressEvent{Type: MigrateProgressEventTypeOutputPathResolved})

	modelData := request.ModelData
	if modelData == nil {
		loaded, err := uc.LoadModel(request.Reader, inputPath)
		if err != nil {
			return nil, err
		}
		modelData = loaded
	}
	reportMigrateProgress(request.ProgressReporter, newMigrateProgressEvent(MigrateProgressEventTypeModelLoaded, modelData))

	if err := validateMigrationTarget(modelData); err != nil {
		return nil, err
	}
	reportMigrateProgress(request.ProgressReporter, newMigrateProgressEvent(MigrateProgressEventTypeModelValidated, modelData))

	if err := MigrateModel(modelData, request.DumpSpringState); err != nil {
		return nil, err
	}
	reportMigrateProgress(request.ProgressReporter, newMigrateProgressEvent(MigrateProgressEventTypeSkeletonMigrated, modelData))

	if err := uc.SaveModel(request.Writer, outputPath, modelData); err != nil {
		return nil, err
	}
	reportMigrateProgress(request.ProgressReporter, newMigrateProgressEvent(MigrateProgressEventTypeModelSaved, modelData))

	logMigrateInfo("VRM座標系移行完了: input=%s output=%s", filepath.Base(inputPath), filepath.Base(outputPath))
	return &MigrateResult{Model: modelData, OutputPath: outputPath}, nil
}

// MigrateModel は読み込み済みモデルのスケルトンと揺れ物を移行し、移行済みの印を付ける。
func MigrateModel(modelData *model.VrmModel, dumpSpringState bool) error {
	if err := validateMigrationTarget(modelData); err != nil {
		return err
	}
	if dumpSpringState && modelData.SpringBones != nil {
		logMigrateDebug("移行前の揺れ物状態:\n%s", logging.Dump(RecordSpringBoneState(modelData.SpringBones)))
	}

	firstPerson := captureFirstPersonFrame(modelData.Scene, modelData.FirstPerson)
	result, err := MigrateSpringBones(modelData.Scene, modelData.RootIndex, modelData.SpringBones)
	if err != nil {
		return merr.Wrap(err, "揺れ物の移行に失敗しました: %s", modelData.Name)
	}
	if !result.IsOk() {
		return result.Err()
	}
	firstPerson.migrate(modelData.Scene)
	modelData.Migrated = true
	return nil
}

// validateMigrationTarget は移行対象モデルか検証する。
func validateMigrationTarget(modelData *model.VrmModel) error {
	if modelData == nil || modelData.Scene == nil {
		return fmt.Errorf("移行対象モデルが未設定です")
	}
	if modelData.Migrated {
		return merr.NewCommonError(merr.MigrationAlreadyDoneErrorID, nil, "座標系移行済みのモデルです: %s", modelData.Name)
	}
	if modelData.Version != model.VRM_VERSION_0 {
		return merr.NewCommonError(
			merr.MigrationAlreadyDoneErrorID,
			nil,
			"VRM0.x以外のモデルは移行対象外です: %s version=%s",
			modelData.Name,
			modelData.Version,
		)
	}
	return nil
}

// ResolveOutputPath は出力パスを解決する。未指定時は入力ファイル名に接尾辞を付ける。
func ResolveOutputPath(inputPath string, outputPath string, suffix string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		if strings.TrimSpace(suffix) == "" {
			suffix = config.DefaultOutputSuffix
		}
		dir := filepath.Dir(inputPath)
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		if strings.TrimSpace(base) == "" {
			return "", fmt.Errorf("保存先VRMパスを決定できません: %s", inputPath)
		}
		resolved = filepath.Join(dir, base+suffix+".vrm")
	}
	if !strings.EqualFold(filepath.Ext(resolved), ".vrm") {
		return "", fmt.Errorf("保存先拡張子が .vrm ではありません: %s", resolved)
	}
	if filepath.Clean(resolved) == filepath.Clean(inputPath) {
		return "", fmt.Errorf("保存先が入力ファイルと同じです: %s", resolved)
	}
	return resolved, nil
}

// newMigrateProgressEvent はモデルの件数を含む進捗イベントを生成する。
func newMigrateProgressEvent(eventType MigrateProgressEventType, modelData *model.VrmModel) MigrateProgressEvent {
	event := MigrateProgressEvent{Type: eventType}
	if modelData == nil {
		return event
	}
	if modelData.Scene != nil {
		event.NodeCount = modelData.Scene.Len()
	}
	if modelData.SpringBones != nil {
		event.JointCount = len(modelData.SpringBones.Joints())
		event.ColliderCount = len(modelData.SpringBones.Colliders())
	}
	return event
}

// reportMigrateProgress は進捗イベントを通知する。
func reportMigrateProgress(reporter IMigrateProgressReporter, event MigrateProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportMigrateProgress(event)
}
