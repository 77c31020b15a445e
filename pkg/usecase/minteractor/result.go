// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/usecase/port/moutput"
)

// MigrateProgressEventType は移行処理の進捗イベント種別を表す。
type MigrateProgressEventType string

const (
	// MigrateProgressEventTypeInputValidated は入力検証完了イベントを表す。
	MigrateProgressEventTypeInputValidated MigrateProgressEventType = "input_validated"
	// MigrateProgressEventTypeOutputPathResolved は出力パス解決完了イベントを表す。
	MigrateProgressEventTypeOutputPathResolved MigrateProgressEventType = "output_path_resolved"
	// MigrateProgressEventTypeModelLoaded はモデル読み込み完了イベントを表す。
	MigrateProgressEventTypeModelLoaded MigrateProgressEventType = "model_loaded"
	// MigrateProgressEventTypeModelValidated はモデル検証完了イベントを表す。
	MigrateProgressEventTypeModelValidated MigrateProgressEventType = "model_validated"
	// MigrateProgressEventTypeSkeletonMigrated はスケルトンと揺れ物の移行完了イベントを表す。
	MigrateProgressEventTypeSkeletonMigrated MigrateProgressEventType = "skeleton_migrated"
	// MigrateProgressEventTypeModelSaved はモデル保存完了イベントを表す。
	MigrateProgressEventTypeModelSaved MigrateProgressEventType = "model_saved"
)

// MigrateProgressEvent は移行処理の進捗イベントを表す。
type MigrateProgressEvent struct {
	Type          MigrateProgressEventType
	NodeCount     int
	JointCount    int
	ColliderCount int
}

// IMigrateProgressReporter は移行処理の進捗通知契約を表す。
type IMigrateProgressReporter interface {
	// ReportMigrateProgress は移行処理進捗を通知する。
	ReportMigrateProgress(event MigrateProgressEvent)
}

// MigrateRequest はVRM座標系移行要求を表す。
type MigrateRequest struct {
	InputPath    string
	OutputPath   string
	OutputSuffix string
	// ModelData が指定された場合は読み込みを省略する。
	ModelData        *model.VrmModel
	Reader           moutput.IFileReader
	Writer           moutput.IFileWriter
	DumpSpringState  bool
	ProgressReporter IMigrateProgressReporter
}

// MigrateResult はVRM座標系移行結果を表す。
type MigrateResult struct {
	Model      *model.VrmModel
	OutputPath string
}
