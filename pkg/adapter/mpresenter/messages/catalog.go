// 指示: miu200521358
package messages

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// englishMessages は英語表示の翻訳。
var englishMessages = map[string]string{
	HelpUsageTitle:         "Usage",
	HelpUsage:              "usage: mu_vrmmigrate [-in input.vrm] [-out output.vrm] [-config config.yaml] [-log level]",
	FlagInput:              "input VRM file path",
	FlagOutput:             "output VRM file path (defaults to the input folder with a suffix)",
	FlagConfig:             "config YAML file path",
	FlagLog:                "log level (debug/info/warn/error)",
	MessageInputRequired:   "input VRM file is required (-in)",
	MessageInputExtInvalid: "input extension is not .vrm: %s",
	MessageConfigFailed:    "failed to load config",
	MessageMigrateFailed:   "coordinate migration failed",
	MessageWarning:         "warning: %s",
	LogMigrateStart:        "[mu_vrmmigrate] migration started: %s",
	LogProgress:            "[mu_vrmmigrate] %s: nodes=%d joints=%d colliders=%d",
	LogMigrateSuccess:      "[mu_vrmmigrate] migration finished: %s",
}

// NewCatalog は日本語と英語の翻訳カタログを生成する。
func NewCatalog() (catalog.Catalog, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for key, text := range englishMessages {
		if err := builder.SetString(language.Japanese, key, key); err != nil {
			return nil, err
		}
		if err := builder.SetString(language.English, key, text); err != nil {
			return nil, err
		}
	}
	return builder, nil
}

// ResolveLanguage は設定値から表示言語を解決する。不明な値は日本語とする。
func ResolveLanguage(lang string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return language.Japanese
	}
	if base, _ := tag.Base(); base.String() == "en" {
		return language.English
	}
	return language.Japanese
}

// NewPrinter は表示言語のプリンタを生成する。
func NewPrinter(lang string) (*message.Printer, error) {
	cat, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(ResolveLanguage(lang), message.Catalog(cat)), nil
}
