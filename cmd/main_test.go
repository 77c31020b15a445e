// 指示: miu200521358
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/merr"
	"golang.org/x/text/message"
)

func newTestPrinter(t *testing.T) *message.Printer {
	t.Helper()
	printer, err := messages.NewPrinter("ja")
	if err != nil {
		t.Fatalf("printer failed: %v", err)
	}
	return printer
}

func TestParseOptionsWithFlags(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"-in", "avatar.vrm", "-out", "avatar_new.vrm", "-log", "debug"}, errBuf, newTestPrinter(t))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.inputPath != "avatar.vrm" {
		t.Fatalf("inputPath mismatch: %s", opts.inputPath)
	}
	if opts.outputPath != "avatar_new.vrm" {
		t.Fatalf("outputPath mismatch: %s", opts.outputPath)
	}
	if opts.logLevel != "debug" {
		t.Fatalf("logLevel mismatch: %s", opts.logLevel)
	}
}

func TestParseOptionsWithPositionals(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"avatar.vrm", "result.vrm"}, errBuf, newTestPrinter(t))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.inputPath != "avatar.vrm" {
		t.Fatalf("inputPath mismatch: %s", opts.inputPath)
	}
	if opts.outputPath != "result.vrm" {
		t.Fatalf("outputPath mismatch: %s", opts.outputPath)
	}
}

func TestParseOptionsRequireVrmExt(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	_, err := parseOptions([]string{"-in", "avatar.pmx"}, errBuf, newTestPrinter(t))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), ".vrm") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseOptionsRequireInput(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	if _, err := parseOptions(nil, errBuf, newTestPrinter(t)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunMigratesVrm0WithConfigSuffix(t *testing.T) {
	tempDir := t.TempDir()
	inPath := filepath.Join(tempDir, "avatar.vrm")
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output_suffix: _mig\nlog_level: warn\n"), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	doc, bin := buildSkinnedVrm0ForTest(t)
	writeTestGLB(t, inPath, doc, bin)

	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-in", inPath, "-config", configPath}, outBuf, errBuf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	outPath := filepath.Join(tempDir, "avatar_mig.vrm")
	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("output not found: %v", err)
	}
	if info.Size() <= 0 {
		t.Fatalf("output size is invalid: %d", info.Size())
	}
	if !strings.Contains(outBuf.String(), "skeleton_migrated") {
		t.Fatalf("progress should be printed: %s", outBuf.String())
	}

	// 移行済みの出力は再移行できない。
	err = run([]string{"-in", outPath, "-out", filepath.Join(tempDir, "again.vrm")}, outBuf, errBuf)
	if merr.ExtractErrorID(err) != merr.MigrationAlreadyDoneErrorID {
		t.Fatalf("expected already migrated error, got %v", err)
	}
}

func TestResolveLanguagePrefersEnvironment(t *testing.T) {
	if got := resolveLanguage("en", "ja"); got != "en" {
		t.Fatalf("environment language should win: %s", got)
	}
	if got := resolveLanguage(" ", "en"); got != "en" {
		t.Fatalf("config language should be used when environment is empty: %s", got)
	}
}

func TestRunKeepsEnvironmentLanguageOverConfig(t *testing.T) {
	t.Setenv(languageEnvName, "en")
	tempDir := t.TempDir()
	inPath := filepath.Join(tempDir, "avatar.vrm")
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("language: ja\nlog_level: warn\n"), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	doc, bin := buildSkinnedVrm0ForTest(t)
	writeTestGLB(t, inPath, doc, bin)

	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-in", inPath, "-config", configPath}, outBuf, errBuf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(outBuf.String(), "migration finished") {
		t.Fatalf("english output expected: %s", outBuf.String())
	}
}

// buildSkinnedVrm0ForTest は1ボーン1頂点のVRM0ドキュメントを構築する。
func buildSkinnedVrm0ForTest(t *testing.T) (map[string]any, []byte) {
	t.Helper()
	var buf bytes.Buffer
	data := []any{
		[]float32{0.1, 1, 0.2},
		[]uint16{0, 0, 0, 0},
		[]float32{1, 0, 0, 0},
	}
	for _, values := range data {
		if err := binary.Write(&buf, binary.LittleEndian, values); err != nil {
			t.Fatalf("write bin failed: %v", err)
		}
	}
	binChunk := buf.Bytes()
	doc := map[string]any{
		"asset":          map[string]any{"version": "2.0"},
		"extensionsUsed": []string{"VRM"},
		"nodes": []any{
			map[string]any{"name": "hips", "translation": []float64{0, 1, 0.1}},
			map[string]any{"name": "body", "mesh": 0, "skin": 0},
		},
		"skins": []any{map[string]any{"joints": []int{0}}},
		"meshes": []any{
			map[string]any{
				"name": "body",
				"primitives": []any{
					map[string]any{"attributes": map[string]any{"POSITION": 0, "JOINTS_0": 1, "WEIGHTS_0": 2}},
				},
			},
		},
		"buffers": []any{map[string]any{"byteLength": len(binChunk)}},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 12},
			map[string]any{"buffer": 0, "byteOffset": 12, "byteLength": 8},
			map[string]any{"buffer": 0, "byteOffset": 20, "byteLength": 16},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 1, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 1, "type": "VEC4"},
			map[string]any{"bufferView": 2, "componentType": 5126, "count": 1, "type": "VEC4"},
		},
		"extensions": map[string]any{
			"VRM": map[string]any{
				"humanoid": map[string]any{"humanBones": []any{map[string]any{"bone": "hips", "node": 0}}},
			},
		},
	}
	return doc, binChunk
}

// writeTestGLB はテスト用JSON/BINをGLB形式で保存する。
func writeTestGLB(t *testing.T, path string, doc map[string]any, binChunk []byte) {
	t.Helper()
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	padding := (4 - (len(jsonBytes) % 4)) % 4
	if padding > 0 {
		jsonBytes = append(jsonBytes, bytes.Repeat([]byte(" "), padding)...)
	}
	binBytes := append([]byte(nil), binChunk...)
	binPadding := (4 - (len(binBytes) % 4)) % 4
	if binPadding > 0 {
		binBytes = append(binBytes, bytes.Repeat([]byte{0x00}, binPadding)...)
	}

	totalLength := uint32(12 + 8 + len(jsonBytes) + 8 + len(binBytes))
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, []uint32{0x46546C67, 2, totalLength}); err != nil {
		t.Fatalf("write header failed: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(jsonBytes)), 0x4E4F534A}); err != nil {
		t.Fatalf("write json chunk header failed: %v", err)
	}
	if _, err := buf.Write(jsonBytes); err != nil {
		t.Fatalf("write json chunk body failed: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(binBytes)), 0x004E4942}); err != nil {
		t.Fatalf("write bin chunk header failed: %v", err)
	}
	if _, err := buf.Write(binBytes); err != nil {
		t.Fatalf("write bin chunk body failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write glb file failed: %v", err)
	}
}
