// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーと翻訳を提供する。
package messages

// メッセージキー一覧。日本語表示ではキーをそのまま書式として使う。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "使い方: mu_vrmmigrate [-in 入力.vrm] [-out 出力.vrm] [-config 設定.yaml] [-log レベル]"

	FlagInput  = "入力VRMファイルパス"
	FlagOutput = "出力VRMファイルパス(未指定時は接尾辞付きで入力と同じフォルダ)"
	FlagConfig = "設定YAMLファイルパス"
	FlagLog    = "ログレベル(debug/info/warn/error)"

	MessageInputRequired   = "VRMファイルを指定してください (-in)"
	MessageInputExtInvalid = "入力拡張子が .vrm ではありません: %s"
	MessageConfigFailed    = "設定の読み込みに失敗しました"
	MessageMigrateFailed   = "座標系移行に失敗しました"
	MessageWarning         = "警告: %s"

	LogMigrateStart   = "[mu_vrmmigrate] 移行開始: %s"
	LogProgress       = "[mu_vrmmigrate] %s: nodes=%d joints=%d colliders=%d"
	LogMigrateSuccess = "[mu_vrmmigrate] 移行完了: %s"
)
