// 指示: miu200521358
// Package config は移行ツールの実行設定を提供する。
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultOutputSuffix は既定の出力ファイル名接尾辞。
	DefaultOutputSuffix = "_vrm1"
	// DefaultLogLevel は既定のログレベル。
	DefaultLogLevel = "info"
)

// Config は移行ツールの実行設定を表す。
type Config struct {
	// LogLevel はログ出力レベル(debug/info/warn/error)。
	LogLevel string `yaml:"log_level"`
	// OutputSuffix は出力先未指定時に入力ファイル名へ付与する接尾辞。
	OutputSuffix string `yaml:"output_suffix"`
	// Language はCLI表示言語(ja/en)。
	Language string `yaml:"language"`
	// DumpSpringState は揺れ物の記録状態をデバッグログへ出力するか。
	DumpSpringState bool `yaml:"dump_spring_state"`
}

// Default は既定設定を返す。
func Default() Config {
	return Config{
		LogLevel:     DefaultLogLevel,
		OutputSuffix: DefaultOutputSuffix,
		Language:     "ja",
	}
}

// Load はYAMLファイルから設定を読み込む。未指定項目は既定値のまま。
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "設定ファイルの読み込みに失敗しました: %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "設定ファイルの解析に失敗しました: %s", path)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize は空文字の項目を既定値へ戻す。
func (c *Config) normalize() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(c.OutputSuffix) == "" {
		c.OutputSuffix = DefaultOutputSuffix
	}
	if strings.TrimSpace(c.Language) == "" {
		c.Language = "ja"
	}
}
