// 指示: miu200521358
package vrm

import (
	"encoding/json"
	"math"

	"github.com/miu200521358/mu_vrmmigrate/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"
	"github.com/qmuntal/gltf/modeler"
)

// accessorAt はindexのアクセサを返す。
func accessorAt(doc *gltf.Document, index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(doc.Accessors) || doc.Accessors[index] == nil {
		return nil, io_common.NewIoParseFailed("accessor のindexが不正です: %d", nil, index)
	}
	return doc.Accessors[index], nil
}

// readVec3Accessor はVEC3アクセサを読み込む。
func readVec3Accessor(doc *gltf.Document, index int) ([]mmath.Vec3, error) {
	accessor, err := accessorAt(doc, index)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 {
		return nil, io_common.NewIoFormatNotSupported("VEC3以外の頂点アクセサは未対応です: accessor=%d", nil, index)
	}
	values, err := modeler.ReadPosition(doc, accessor, nil)
	if err != nil {
		return nil, io_common.NewIoParseFailed("頂点アクセサの読込に失敗しました: accessor=%d", err, index)
	}
	vectors := make([]mmath.Vec3, len(values))
	for i, v := range values {
		vectors[i] = mmath.NewVec3(float64(v[0]), float64(v[1]), float64(v[2]))
	}
	return vectors, nil
}

// readJointsAccessor はJOINTS_0アクセサを読み込む。
func readJointsAccessor(doc *gltf.Document, index int) ([][4]int, error) {
	accessor, err := accessorAt(doc, index)
	if err != nil {
		return nil, err
	}
	values, err := modeler.ReadJoints(doc, accessor, nil)
	if err != nil {
		return nil, io_common.NewIoParseFailed("ジョイントアクセサの読込に失敗しました: accessor=%d", err, index)
	}
	joints := make([][4]int, len(values))
	for i, v := range values {
		joints[i] = [4]int{int(v[0]), int(v[1]), int(v[2]), int(v[3])}
	}
	return joints, nil
}

// readWeightsAccessor はWEIGHTS_0アクセサを読み込む。
func readWeightsAccessor(doc *gltf.Document, index int) ([][4]float64, error) {
	accessor, err := accessorAt(doc, index)
	if err != nil {
		return nil, err
	}
	values, err := modeler.ReadWeights(doc, accessor, nil)
	if err != nil {
		return nil, io_common.NewIoParseFailed("ウェイトアクセサの読込に失敗しました: accessor=%d", err, index)
	}
	weights := make([][4]float64, len(values))
	for i, v := range values {
		weights[i] = [4]float64{float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])}
	}
	return weights, nil
}

// readInverseBindMatrices はMAT4アクセサを読み込む。
// modeler は要素を [行][列] で返すため、列優先の並びへ組み替える。
func readInverseBindMatrices(doc *gltf.Document, index int) ([]mmath.Mat4, error) {
	accessor, err := accessorAt(doc, index)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(doc, accessor, nil)
	if err != nil {
		return nil, io_common.NewIoParseFailed("逆バインド行列の読込に失敗しました: accessor=%d", err, index)
	}
	values, ok := data.([][4][4]float32)
	if !ok {
		return nil, io_common.NewIoFormatNotSupported("逆バインド行列の形式が未対応です: accessor=%d", nil, index)
	}
	matrices := make([]mmath.Mat4, len(values))
	for i, rows := range values {
		flat := [16]float64{}
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				flat[c*4+r] = float64(rows[r][c])
			}
		}
		matrices[i] = mmath.NewMat4FromColumnMajor(flat)
	}
	return matrices, nil
}

// accessorBytes はアクセサ先頭からのバッファ領域とストライドを返す。
// 書き戻しは既存領域の上書きに限るため、疎アクセサと非float要素は扱わない。
func accessorBytes(doc *gltf.Document, index int) ([]byte, uint32, error) {
	accessor, err := accessorAt(doc, index)
	if err != nil {
		return nil, 0, err
	}
	if accessor.Sparse != nil {
		return nil, 0, io_common.NewIoFormatNotSupported("疎アクセサへの書き戻しは未対応です: accessor=%d", nil, index)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, 0, io_common.NewIoFormatNotSupported("float以外のアクセサへの書き戻しは未対応です: accessor=%d", nil, index)
	}
	if accessor.BufferView == nil || int(*accessor.BufferView) >= len(doc.BufferViews) {
		return nil, 0, io_common.NewIoSaveFailed("accessor.bufferView が不正です: accessor=%d", nil, index)
	}
	view := doc.BufferViews[*accessor.BufferView]
	if view == nil || int(view.Buffer) >= len(doc.Buffers) || doc.Buffers[view.Buffer] == nil {
		return nil, 0, io_common.NewIoSaveFailed("bufferView.buffer が不正です: accessor=%d", nil, index)
	}
	data := doc.Buffers[view.Buffer].Data
	start := int(view.ByteOffset) + int(accessor.ByteOffset)
	end := int(view.ByteOffset) + int(view.ByteLength)
	if start > end || end > len(data) {
		return nil, 0, io_common.NewIoSaveFailed("アクセサの範囲がバッファ外です: accessor=%d", nil, index)
	}
	return data[start:end], view.ByteStride, nil
}

// writeVec3Accessor はVEC3アクセサを上書きする。
func writeVec3Accessor(doc *gltf.Document, index int, vectors []mmath.Vec3) error {
	accessor, err := accessorAt(doc, index)
	if err != nil {
		return err
	}
	if int(accessor.Count) != len(vectors) {
		return io_common.NewIoSaveFailed("頂点数がアクセサと一致しません: accessor=%d count=%d vertices=%d",
			nil, index, accessor.Count, len(vectors))
	}
	b, stride, err := accessorBytes(doc, index)
	if err != nil {
		return err
	}
	values := make([][3]float32, len(vectors))
	for i, v := range vectors {
		values[i] = [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
	}
	if err := binary.Write(b, stride, values); err != nil {
		return io_common.NewIoSaveFailed("頂点アクセサの書き込みに失敗しました: accessor=%d", err, index)
	}
	return nil
}

// writeMat4Accessor はMAT4アクセサを上書きする。
func writeMat4Accessor(doc *gltf.Document, index int, matrices []mmath.Mat4) error {
	accessor, err := accessorAt(doc, index)
	if err != nil {
		return err
	}
	if int(accessor.Count) != len(matrices) {
		return io_common.NewIoSaveFailed("行列数がアクセサと一致しません: accessor=%d count=%d matrices=%d",
			nil, index, accessor.Count, len(matrices))
	}
	b, stride, err := accessorBytes(doc, index)
	if err != nil {
		return err
	}
	if err := binary.Write(b, stride, toMat4Rows(matrices)); err != nil {
		return io_common.NewIoSaveFailed("逆バインド行列の書き込みに失敗しました: accessor=%d", err, index)
	}
	return nil
}

// toMat4Rows は行列を modeler と binary が扱う [行][列] の配列へ変換する。
// バッファ上は列優先で書き出される。
func toMat4Rows(matrices []mmath.Mat4) [][4][4]float32 {
	values := make([][4][4]float32, len(matrices))
	for i, matrix := range matrices {
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				values[i][r][c] = float32(matrix[c*4+r])
			}
		}
	}
	return values
}

// updateAccessorBounds は min/max を頂点値から再計算する。宣言が無い場合は何もしない。
func updateAccessorBounds(accessor *gltf.Accessor, vectors []mmath.Vec3) {
	if len(accessor.Min) != 3 || len(accessor.Max) != 3 || len(vectors) == 0 {
		return
	}
	minValues := [3]float64{vectors[0].X, vectors[0].Y, vectors[0].Z}
	maxValues := minValues
	for _, v := range vectors[1:] {
		for axis, value := range [3]float64{v.X, v.Y, v.Z} {
			minValues[axis] = math.Min(minValues[axis], value)
			maxValues[axis] = math.Max(maxValues[axis], value)
		}
	}
	assignBounds(accessor.Min, minValues)
	assignBounds(accessor.Max, maxValues)
}

// assignBounds は要素型を保ったまま境界値を書き込む。
func assignBounds[T float32 | float64](dst []T, values [3]float64) {
	for i := range dst {
		dst[i] = T(values[i])
	}
}

// extensionJSON は拡張のJSONを返す。
func extensionJSON(extensions gltf.Extensions, name string) ([]byte, bool) {
	if extensions == nil {
		return nil, false
	}
	value, ok := extensions[name]
	if !ok || value == nil {
		return nil, false
	}
	switch raw := value.(type) {
	case json.RawMessage:
		return raw, true
	case []byte:
		return raw, true
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	return b, true
}

// marshalExtras は extras をJSONへ変換する。無い場合は空オブジェクト。
func marshalExtras(extras any) []byte {
	if extras == nil {
		return []byte("{}")
	}
	if raw, ok := extras.(json.RawMessage); ok {
		return raw
	}
	b, err := json.Marshal(extras)
	if err != nil || len(b) == 0 || b[0] != '{' {
		return []byte("{}")
	}
	return b
}
