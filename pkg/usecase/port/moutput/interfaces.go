// 指示: miu200521358
package moutput

import "github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"

// IFileReader はモデル読み込み契約を表す。
type IFileReader interface {
	// CanLoad は読み込み可否を返す。
	CanLoad(path string) bool
	// Load はモデルを読み込む。
	Load(path string) (*model.VrmModel, error)
}

// IFileWriter はモデル保存契約を表す。
type IFileWriter interface {
	// Save はモデルを保存する。
	Save(path string, modelData *model.VrmModel) error
}
