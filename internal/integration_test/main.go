// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/io_model/vrm"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/config"
	"github.com/miu200521358/mu_vrmmigrate/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode = 0o755
)

// batchConfig はバッチ移行の実行設定を表す。
type batchConfig struct {
	InputRoot  string
	OutputRoot string
	DryRun     bool
	FailFast   bool
}

// migrationEntry は1モデル分の移行入力情報を表す。
type migrationEntry struct {
	Index      int
	SourcePath string
	ModelName  string
	OutputPath string
}

// migrationResult は1モデル分の移行結果を表す。
type migrationResult struct {
	Entry        migrationEntry
	Status       string
	Duration     time.Duration
	Err          error
	Warnings     []string
	ProgressInfo string
}

// migrateProgressCollector は移行の進捗イベントを収集する。
type migrateProgressCollector struct {
	eventCounts map[minteractor.MigrateProgressEventType]int
	nodeMax     int
	jointMax    int
	colliderMax int
}

// main は入力フォルダ配下のVRMを一括でVRM1.0座標系へ移行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括移行を実行し、終了コードを返す。
func run() int {
	cfg, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries, err := buildMigrationEntries(cfg.InputRoot, cfg.OutputRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "入力フォルダの走査に失敗しました: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "移行対象モデルがありません")
		return 2
	}

	results := executeBatchMigration(cfg, entries)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	inputRoot := flag.String("input-root", "", "移行対象VRMを含む入力ルートディレクトリ")
	outputRoot := flag.String("output-root", defaultOutputRoot, "移行結果の出力ルートディレクトリ")
	dryRun := flag.Bool("dry-run", false, "実移行せず、入力解決と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedInputRoot := strings.TrimSpace(*inputRoot)
	if trimmedInputRoot == "" {
		return batchConfig{}, errors.New("input-root が空です")
	}
	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	return batchConfig{
		InputRoot:  normalizeInputPath(trimmedInputRoot),
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		DryRun:     *dryRun,
		FailFast:   *failFast,
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	return filepath.Join(filepath.Dir(currentFilePath), "output"), nil
}

// buildMigrationEntries は入力ルート配下のVRMから移行対象エントリを生成する。
func buildMigrationEntries(inputRoot string, outputRoot string) ([]migrationEntry, error) {
	inputPaths := make([]string, 0)
	err := filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".vrm") {
			return nil
		}
		inputPaths = append(inputPaths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(inputPaths)

	entries := make([]migrationEntry, 0, len(inputPaths))
	for i, inputPath := range inputPaths {
		modelName := resolveModelName(inputPath)
		safeModelName := sanitizePathComponent(modelName)
		outputPath := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s%s.vrm", i+1, safeModelName, config.DefaultOutputSuffix))
		entries = append(entries, migrationEntry{
			Index:      i + 1,
			SourcePath: inputPath,
			ModelName:  modelName,
			OutputPath: outputPath,
		})
	}
	return entries, nil
}

// executeBatchMigration は全モデルの移行処理を順次実行する。
func executeBatchMigration(cfg batchConfig, entries []migrationEntry) []migrationResult {
	results := make([]migrationResult, 0, len(entries))
	repository := vrm.NewVrmRepository()
	usecase := minteractor.NewVrmMigrateUsecase(minteractor.VrmMigrateUsecaseDeps{
		ModelReader: repository,
		ModelWriter: repository,
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 移行開始: model=%s\n", entry.Index, total, entry.ModelName)
		result := migrateModelEntry(usecase, cfg, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 移行成功: model=%s output=%s elapsed=%s\n",
				entry.Index, total, entry.ModelName, entry.OutputPath, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.ProgressInfo) != "" {
				fmt.Printf("[%d/%d] 移行進捗: %s\n", entry.Index, total, result.ProgressInfo)
			}
			if len(result.Warnings) > 0 {
				fmt.Printf("[%d/%d] 警告: %s\n", entry.Index, total, strings.Join(result.Warnings, ","))
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: model=%s input=%s output=%s\n",
				entry.Index, total, entry.ModelName, entry.SourcePath, entry.OutputPath)
		default:
			fmt.Printf("[%d/%d] 移行失敗: model=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Err)
			if cfg.FailFast {
				return results
			}
		}
	}
	return results
}

// migrateModelEntry は1モデル分の移行を実行する。
func migrateModelEntry(usecase *minteractor.VrmMigrateUsecase, cfg batchConfig, entry migrationEntry) migrationResult {
	result := migrationResult{
		Entry:  entry,
		Status: "failed",
	}
	if cfg.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(filepath.Dir(entry.OutputPath), batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	progressCollector := newMigrateProgressCollector()
	migrated, err := usecase.Migrate(minteractor.MigrateRequest{
		InputPath:        entry.SourcePath,
		OutputPath:       entry.OutputPath,
		ProgressReporter: progressCollector,
	})
	if err != nil {
		result.Err = err
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.Warnings = migrated.Model.Warnings()
	result.ProgressInfo = progressCollector.Summary()
	return result
}

// printBatchSummary は移行結果の集計を標準出力へ表示する。
func printBatchSummary(results []migrationResult) {
	succeeded := 0
	failed := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチ移行サマリ: total=%d succeeded=%d failed=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		dryRun,
	)
}

// resolveModelName は入力パスから拡張子を除いたモデル名を返す。
func resolveModelName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		return "model"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(trimmed))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	if runtime.GOOS != "linux" || len(path) < 2 || path[1] != ':' {
		return path
	}
	drive := strings.ToLower(path[:1])
	rest := strings.ReplaceAll(path[2:], "\\", "/")
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, strings.TrimSpace(name))
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "model"
	}
	return replaced
}

// newMigrateProgressCollector は移行進捗収集器を生成する。
func newMigrateProgressCollector() *migrateProgressCollector {
	return &migrateProgressCollector{
		eventCounts: map[minteractor.MigrateProgressEventType]int{},
	}
}

// ReportMigrateProgress は移行の進捗イベントを収集する。
func (collector *migrateProgressCollector) ReportMigrateProgress(event minteractor.MigrateProgressEvent) {
	if collector == nil {
		return
	}
	collector.eventCounts[event.Type]++
	collector.nodeMax = max(collector.nodeMax, event.NodeCount)
	collector.jointMax = max(collector.jointMax, event.JointCount)
	collector.colliderMax = max(collector.colliderMax, event.ColliderCount)
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *migrateProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"events=%d nodes=%d joints=%d colliders=%d stages=%s",
		len(collector.eventCounts),
		collector.nodeMax,
		collector.jointMax,
		collector.colliderMax,
		strings.Join(types, ","),
	)
}
