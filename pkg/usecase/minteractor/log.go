// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrmmigrate/pkg/shared/logging"

// logMigrateInfo は移行処理の情報ログを出力する。
func logMigrateInfo(format string, params ...any) {
	logging.DefaultLogger().Info(format, params...)
}

// logMigrateDebug は移行処理のデバッグログを出力する。
func logMigrateDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if !logger.IsDebugEnabled() {
		return
	}
	logger.Debug(format, params...)
}

// logMigrateWarn は移行処理の警告ログを出力する。
func logMigrateWarn(format string, params ...any) {
	logging.DefaultLogger().Warn(format, params...)
}
