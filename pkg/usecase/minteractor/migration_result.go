// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/merr"
)

// MigrationErrorKind は移行失敗の種別を表す。
type MigrationErrorKind string

const (
	// MigrationErrorKindAsset は必要な構造要素が欠けているモデルを表す。
	MigrationErrorKindAsset MigrationErrorKind = "AssetError"
)

// MigrationResult は移行処理の成否を表す。失敗は値として返し、panicしない。
type MigrationResult struct {
	kind    MigrationErrorKind
	message string
}

// MigrationOk は成功結果を返す。
func MigrationOk() MigrationResult {
	return MigrationResult{}
}

// NewAssetError はAssetErrorの結果を返す。
func NewAssetError(format string, params ...any) MigrationResult {
	return MigrationResult{
		kind:    MigrationErrorKindAsset,
		message: fmt.Sprintf(format, params...),
	}
}

// IsOk は成功か返す。
func (r MigrationResult) IsOk() bool {
	return r.kind == ""
}

// Kind は失敗種別を返す。成功時は空。
func (r MigrationResult) Kind() MigrationErrorKind {
	return r.kind
}

// Message は失敗メッセージを返す。
func (r MigrationResult) Message() string {
	return r.message
}

// String は結果の表示文字列を返す。
func (r MigrationResult) String() string {
	if r.IsOk() {
		return "Ok"
	}
	return fmt.Sprintf("%s: %s", r.kind, r.message)
}

// Err は失敗結果をエラーID付きエラーへ変換する。成功時はnil。
func (r MigrationResult) Err() error {
	if r.IsOk() {
		return nil
	}
	return merr.NewCommonError(merr.MigrationAssetErrorID, nil, "%s", r.String())
}
