// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrmmigrate/pkg/usecase/port/moutput"

// VrmMigrateUsecaseDeps はVRM座標系移行ユースケースの依存を表す。
type VrmMigrateUsecaseDeps struct {
	ModelReader moutput.IFileReader
	ModelWriter moutput.IFileWriter
}

// VrmMigrateUsecase はVRM0.xモデルをVRM1.0座標系へ移行する処理をまとめたユースケースを表す。
type VrmMigrateUsecase struct {
	modelReader moutput.IFileReader
	modelWriter moutput.IFileWriter
}

// NewVrmMigrateUsecase はVRM座標系移行ユースケースを生成する。
func NewVrmMigrateUsecase(deps VrmMigrateUsecaseDeps) *VrmMigrateUsecase {
	return &VrmMigrateUsecase{
		modelReader: deps.ModelReader,
		modelWriter: deps.ModelWriter,
	}
}
