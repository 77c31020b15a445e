// 指示: miu200521358
package vrm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/logging"
	"github.com/qmuntal/gltf"
)

const (
	vrm0ExtensionName       = "VRM"
	vrm1ExtensionName       = "VRMC_vrm"
	vrm1SpringExtensionName = "VRMC_springBone"
	sceneRootNodeName       = "__scene_root__"
)

// LoadProgressEventType はVRM読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeJsonParsed はJSON解析完了イベントを表す。
	LoadProgressEventTypeJsonParsed LoadProgressEventType = "json_parsed"
	// LoadProgressEventTypePrimitiveProcessed はプリミティブ変換進行イベントを表す。
	LoadProgressEventTypePrimitiveProcessed LoadProgressEventType = "primitive_processed"
	// LoadProgressEventTypeCompleted はVRM読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はVRM読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type           LoadProgressEventType
	FileSizeBytes  int
	NodeCount      int
	AccessorCount  int
	PrimitiveTotal int
	PrimitiveDone  int
}

// VrmRepository はVRMの読み書きを表す。
type VrmRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewVrmRepository はVrmRepositoryを生成する。
func NewVrmRepository() *VrmRepository {
	return &VrmRepository{}
}

// SetLoadProgressReporter はVRM読込進捗受信コールバックを設定する。
func (r *VrmRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *VrmRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vrm")
}

// InferName はパスから表示名を推定する。
func (r *VrmRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はVRMを読み込み、glTFノードと同じindexを持つシーンを構築する。
func (r *VrmRepository) Load(path string) (*model.VrmModel, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	loadTargetName := filepath.Base(path)
	logVrmInfo("VRM読込開始: file=%s", loadTargetName)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("VRMファイル情報の取得に失敗しました", err)
	}
	fileSize := int(info.Size())

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, io_common.NewIoParseFailed("VRMファイルの解析に失敗しました: %s", err, loadTargetName)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeFileReadComplete,
		FileSizeBytes: fileSize,
	})
	r.reportLoadProgress(LoadProgressEvent{
		Type:           LoadProgressEventTypeJsonParsed,
		FileSizeBytes:  fileSize,
		NodeCount:      len(doc.Nodes),
		AccessorCount:  len(doc.Accessors),
		PrimitiveTotal: countGltfPrimitives(doc.Meshes),
	})
	logVrmInfo(
		"VRM読込ステップ: JSON解析完了 nodes=%d meshes=%d primitives=%d accessors=%d",
		len(doc.Nodes),
		len(doc.Meshes),
		countGltfPrimitives(doc.Meshes),
		len(doc.Accessors),
	)

	version := detectVrmVersion(doc)
	if version == "" {
		return nil, io_common.NewIoFormatNotSupported("VRM拡張が見つかりません: %s", nil, loadTargetName)
	}

	parentIndexes, err := buildNodeParentIndexes(doc.Nodes)
	if err != nil {
		return nil, err
	}

	modelData := model.NewVrmModel(path)
	modelData.Name = r.InferName(path)
	modelData.Version = version

	builder := newSceneBuilder(doc, modelData, parentIndexes, func(done int) {
		r.reportLoadProgress(LoadProgressEvent{
			Type:           LoadProgressEventTypePrimitiveProcessed,
			FileSizeBytes:  fileSize,
			NodeCount:      len(doc.Nodes),
			AccessorCount:  len(doc.Accessors),
			PrimitiveTotal: countGltfPrimitives(doc.Meshes),
			PrimitiveDone:  done,
		})
	})
	source, err := builder.build()
	if err != nil {
		return nil, err
	}
	logVrmInfo(
		"VRM読込ステップ: シーン構築完了 nodes=%d skins=%d meshes=%d",
		modelData.Scene.Len(),
		len(source.skeletons),
		len(source.meshes),
	)

	if err := loadSpringBones(doc, modelData, source); err != nil {
		return nil, err
	}
	loadFirstPerson(doc, modelData, source)
	modelData.Migrated = readMigratedMarker(doc)
	modelData.Source = source

	r.reportLoadProgress(LoadProgressEvent{
		Type:           LoadProgressEventTypeCompleted,
		FileSizeBytes:  fileSize,
		NodeCount:      len(doc.Nodes),
		AccessorCount:  len(doc.Accessors),
		PrimitiveTotal: countGltfPrimitives(doc.Meshes),
		PrimitiveDone:  countGltfPrimitives(doc.Meshes),
	})
	logVrmInfo("VRM読込完了: file=%s version=%s migrated=%t warnings=%v",
		loadTargetName, modelData.Version, modelData.Migrated, modelData.Warnings())
	return modelData, nil
}

// Save は移行後のシーンを読込元のglTFドキュメントへ書き戻してVRMとして保存する。
func (r *VrmRepository) Save(path string, modelData *model.VrmModel) error {
	if !r.CanLoad(path) {
		return io_common.NewIoExtInvalid(path, nil)
	}
	if modelData == nil {
		return io_common.NewIoSaveFailed("保存対象のモデルがありません", nil)
	}
	source, ok := modelData.Source.(*vrmSource)
	if !ok || source == nil || source.doc == nil {
		return io_common.NewIoSaveFailed("VRMとして読み込んだモデルではありません: %s", nil, modelData.Name)
	}
	saveTargetName := filepath.Base(path)
	logVrmInfo("VRM保存開始: file=%s", saveTargetName)

	writeNodeTransforms(source, modelData.Scene)
	if err := writeInverseBindMatrices(source); err != nil {
		return err
	}
	if err := writeMeshAccessors(source); err != nil {
		return err
	}
	if err := writeSpringBones(source); err != nil {
		return err
	}
	if err := writeFirstPerson(source, modelData); err != nil {
		return err
	}
	if modelData.Migrated {
		if err := writeMigratedMarker(source.doc); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return io_common.NewIoSaveFailed("出力先フォルダの作成に失敗しました: %s", err, dir)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return io_common.NewIoSaveFailed("VRMファイルの作成に失敗しました: %s", err, saveTargetName)
	}
	encoder := gltf.NewEncoder(file)
	encoder.AsBinary = true
	if err := encoder.Encode(source.doc); err != nil {
		_ = file.Close()
		return io_common.NewIoSaveFailed("VRMファイルの書き込みに失敗しました: %s", err, saveTargetName)
	}
	if err := file.Close(); err != nil {
		return io_common.NewIoSaveFailed("VRMファイルのクローズに失敗しました: %s", err, saveTargetName)
	}
	logVrmInfo("VRM保存完了: file=%s", saveTargetName)
	return nil
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *VrmRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// countGltfPrimitives はglTF内のprimitive総数を返す。
func countGltfPrimitives(meshes []*gltf.Mesh) int {
	total := 0
	for _, mesh := range meshes {
		if mesh == nil {
			continue
		}
		total += len(mesh.Primitives)
	}
	return total
}

// logVrmInfo はVRM入出力のINFOログを出力する。
func logVrmInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logVrmDebug はVRM入出力のデバッグログを出力する。
func logVrmDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logVrmWarn はVRM入出力の警告ログを出力する。
func logVrmWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// buildNodeParentIndexes はnode配列から親インデックス配列を生成する。
func buildNodeParentIndexes(nodes []*gltf.Node) ([]int, error) {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		if node == nil {
			continue
		}
		for _, child := range node.Children {
			childIndex := int(child)
			if childIndex >= len(nodes) {
				return nil, io_common.NewIoParseFailed("node.children のindexが不正です: %d", nil, childIndex)
			}
			if childIndex == parentIndex {
				return nil, io_common.NewIoParseFailed("node親子関係に循環があります: %d", nil, childIndex)
			}
			if parentIndexes[childIndex] == -1 {
				parentIndexes[childIndex] = parentIndex
			} else if parentIndexes[childIndex] != parentIndex {
				logVrmWarn("複数の親を持つnodeは最初の親を採用します: node=%d", childIndex)
			}
		}
	}
	if err := checkNodeCycles(parentIndexes); err != nil {
		return nil, err
	}
	return parentIndexes, nil
}

// checkNodeCycles は親配列を辿って循環を検出する。
func checkNodeCycles(parents []int) error {
	state := make([]int, len(parents))
	for i := range parents {
		path := make([]int, 0)
		current := i
		for current >= 0 && state[current] == 0 {
			state[current] = 1
			path = append(path, current)
			current = parents[current]
		}
		if current >= 0 && state[current] == 1 {
			return io_common.NewIoParseFailed("node親子関係に循環があります: %d", nil, current)
		}
		for _, index := range path {
			state[index] = 2
		}
	}
	return nil
}

// detectVrmVersion は拡張宣言から優先バージョンを判定する。
func detectVrmVersion(doc *gltf.Document) model.VrmVersion {
	hasVrm1 := containsIgnoreCase(doc.ExtensionsUsed, vrm1ExtensionName)
	hasVrm0 := containsIgnoreCase(doc.ExtensionsUsed, vrm0ExtensionName)
	if doc.Extensions != nil {
		if _, ok := doc.Extensions[vrm1ExtensionName]; ok {
			hasVrm1 = true
		}
		if _, ok := doc.Extensions[vrm0ExtensionName]; ok {
			hasVrm0 = true
		}
	}

	// VRM0/1 同時宣言時は VRM1 を優先する。
	if hasVrm1 {
		return model.VRM_VERSION_1
	}
	if hasVrm0 {
		return model.VRM_VERSION_0
	}
	return ""
}

// containsIgnoreCase は大文字小文字を無視して要素を検索する。
func containsIgnoreCase(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}
