// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/usecase/port/moutput"
)

// LoadModel はVRMモデルを読み込む。
func (uc *VrmMigrateUsecase) LoadModel(rep moutput.IFileReader, path string) (*model.VrmModel, error) {
	repo := rep
	if repo == nil {
		repo = uc.modelReader
	}
	if repo == nil {
		return nil, fmt.Errorf("モデル読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("入力VRMパスが未指定です")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("読み込みできないファイルです: %s", path)
	}
	modelData, err := repo.Load(path)
	if err != nil {
		return nil, err
	}
	if modelData == nil {
		return nil, fmt.Errorf("モデル読み込み結果が空です")
	}
	return modelData, nil
}
