// 指示: miu200521358
// Package io_common は入出力アダプタ共通のエラー生成を提供する。
package io_common

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/merr"
)

// NewIoFileNotFound はファイル未検出エラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return merr.NewCommonError(merr.IoFileNotFoundErrorID, cause, "ファイルが見つかりません: %s", path)
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return merr.NewCommonError(merr.IoExtInvalidErrorID, cause, "対応していない拡張子です: %s", path)
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, cause error, params ...any) error {
	return merr.NewCommonError(merr.IoParseFailedErrorID, cause, format, params...)
}

// NewIoFormatNotSupported は形式未対応エラーを生成する。
func NewIoFormatNotSupported(format string, cause error, params ...any) error {
	return merr.NewCommonError(merr.IoFormatNotSupportedErrorID, cause, format, params...)
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(format string, cause error, params ...any) error {
	return merr.NewCommonError(merr.IoSaveFailedErrorID, cause, format, params...)
}
