// 指示: miu200521358
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/io_model/vrm"
	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/config"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/logging"
	"github.com/miu200521358/mu_vrmmigrate/pkg/usecase/minteractor"
	"github.com/pkg/errors"
	"golang.org/x/text/message"
)

// languageEnvName は表示言語を指定する環境変数名。設定ファイルより優先する。
const languageEnvName = "MU_VRMMIGRATE_LANG"

// options はCLI引数を保持する。
type options struct {
	inputPath  string
	outputPath string
	configPath string
	logLevel   string
}

// progressPrinter は移行進捗を出力する。
type progressPrinter struct {
	out     io.Writer
	printer *message.Printer
}

// ReportMigrateProgress は進捗イベントを1行で出力する。
func (p *progressPrinter) ReportMigrateProgress(event minteractor.MigrateProgressEvent) {
	fmt.Fprintln(p.out, p.printer.Sprintf(messages.LogProgress, event.Type, event.NodeCount, event.JointCount, event.ColliderCount))
}

// main はVRM0.xモデルをVRM1.0の座標系へ移行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	envLanguage := os.Getenv(languageEnvName)
	printer, err := messages.NewPrinter(envLanguage)
	if err != nil {
		return err
	}
	opts, err := parseOptions(args, errOut, printer)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return errors.Wrap(err, printer.Sprintf(messages.MessageConfigFailed))
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	logging.SetDefaultLogger(logging.NewLogger(logging.LogLevel(cfg.LogLevel), errOut))
	printer, err = messages.NewPrinter(resolveLanguage(envLanguage, cfg.Language))
	if err != nil {
		return err
	}

	repository := vrm.NewVrmRepository()
	usecase := minteractor.NewVrmMigrateUsecase(minteractor.VrmMigrateUsecaseDeps{
		ModelReader: repository,
		ModelWriter: repository,
	})

	fmt.Fprintln(out, printer.Sprintf(messages.LogMigrateStart, opts.inputPath))
	result, err := usecase.Migrate(minteractor.MigrateRequest{
		InputPath:        opts.inputPath,
		OutputPath:       opts.outputPath,
		OutputSuffix:     cfg.OutputSuffix,
		DumpSpringState:  cfg.DumpSpringState,
		ProgressReporter: &progressPrinter{out: out, printer: printer},
	})
	if err != nil {
		return errors.Wrap(err, printer.Sprintf(messages.MessageMigrateFailed))
	}
	for _, warning := range result.Model.Warnings() {
		fmt.Fprintln(errOut, printer.Sprintf(messages.MessageWarning, warning))
	}
	fmt.Fprintln(out, printer.Sprintf(messages.LogMigrateSuccess, result.OutputPath))
	return nil
}

// parseOptions はCLI引数を解析する。フラグが無い場合は位置引数を入力、出力の順で使う。
func parseOptions(args []string, errOut io.Writer, printer *message.Printer) (options, error) {
	fs := flag.NewFlagSet("mu_vrmmigrate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintln(errOut, printer.Sprintf(messages.HelpUsage))
		fs.PrintDefaults()
	}

	in := fs.String("in", "", printer.Sprintf(messages.FlagInput))
	out := fs.String("out", "", printer.Sprintf(messages.FlagOutput))
	configPath := fs.String("config", "", printer.Sprintf(messages.FlagConfig))
	logLevel := fs.String("log", "", printer.Sprintf(messages.FlagLog))
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *in == "" && fs.NArg() > 0 {
		*in = fs.Arg(0)
	}
	if *out == "" && fs.NArg() > 1 {
		*out = fs.Arg(1)
	}
	if strings.TrimSpace(*in) == "" {
		return options{}, errors.New(printer.Sprintf(messages.MessageInputRequired))
	}
	if !strings.EqualFold(filepath.Ext(*in), ".vrm") {
		return options{}, errors.New(printer.Sprintf(messages.MessageInputExtInvalid, *in))
	}

	return options{
		inputPath:  *in,
		outputPath: *out,
		configPath: *configPath,
		logLevel:   *logLevel,
	}, nil
}

// resolveLanguage は表示言語を決める。環境変数が空の場合のみ設定値を使う。
func resolveLanguage(envLanguage string, configLanguage string) string {
	if strings.TrimSpace(envLanguage) != "" {
		return envLanguage
	}
	return configLanguage
}
