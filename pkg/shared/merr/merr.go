// 指示: miu200521358
// Package merr はエラーID付きの共通エラーを提供する。
package merr

import (
	"fmt"

	"github.com/pkg/errors"
)

// エラーID一覧。
const (
	// IoFileNotFoundErrorID はファイル未検出エラー。
	IoFileNotFoundErrorID = "14101"
	// IoExtInvalidErrorID は拡張子不正エラー。
	IoExtInvalidErrorID = "14102"
	// IoParseFailedErrorID は解析失敗エラー。
	IoParseFailedErrorID = "14103"
	// IoFormatNotSupportedErrorID は形式未対応エラー。
	IoFormatNotSupportedErrorID = "14104"
	// IoSaveFailedErrorID は保存失敗エラー。
	IoSaveFailedErrorID = "14105"
	// MigrationAssetErrorID は移行対象モデルの構造不備エラー。
	MigrationAssetErrorID = "15101"
	// MigrationAlreadyDoneErrorID は移行済みモデルエラー。
	MigrationAlreadyDoneErrorID = "15102"
	// SpringRestoreOrderErrorID は揺れ物状態の復元順序エラー。
	SpringRestoreOrderErrorID = "15201"
)

// CommonError はエラーIDとメッセージを保持するエラー。
type CommonError struct {
	id      string
	message string
	cause   error
}

// NewCommonError はCommonErrorを生成する。
func NewCommonError(id string, cause error, format string, params ...any) *CommonError {
	return &CommonError{
		id:      id,
		message: fmt.Sprintf(format, params...),
		cause:   cause,
	}
}

// ErrorID はエラーIDを返す。
func (e *CommonError) ErrorID() string {
	return e.id
}

// Message はメッセージ本文を返す。
func (e *CommonError) Message() string {
	return e.message
}

// Error はエラー文字列を返す。
func (e *CommonError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.id, e.message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.id, e.message, e.cause)
}

// Cause は原因エラーを返す。
func (e *CommonError) Cause() error {
	return e.cause
}

// Unwrap は原因エラーを返す。
func (e *CommonError) Unwrap() error {
	return e.cause
}

// ExtractErrorID はエラーチェーンから最初のエラーIDを取り出す。見つからない場合は空文字。
func ExtractErrorID(err error) string {
	var commonErr *CommonError
	if errors.As(err, &commonErr) {
		return commonErr.ErrorID()
	}
	return ""
}

// Wrap は原因エラーへ文脈を付与する。
func Wrap(err error, format string, params ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, params...)
}
