// 指示: miu200521358
// Package model は移行対象のVRMモデルを表す。
package model

import (
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/springbone"
)

// VrmVersion はVRMの仕様バージョンを表す。
type VrmVersion string

const (
	// VRM_VERSION_0 はVRM0.x。
	VRM_VERSION_0 VrmVersion = "0.x"
	// VRM_VERSION_1 はVRM1.0。
	VRM_VERSION_1 VrmVersion = "1.0"
)

// VrmFirstPerson は一人称視点の基準ボーンとボーンローカルのオフセットを表す。
type VrmFirstPerson struct {
	BoneIndex int
	Offset    mmath.Vec3
}

// VrmModel は読み込んだVRMモデルを表す。
type VrmModel struct {
	Path    string
	Name    string
	Version VrmVersion
	// Scene はglTFノードと同じindexでノードを保持する。末尾に合成ルートを持つ。
	Scene *scene.Scene
	// RootIndex は全シーンルートをまとめる合成ルートのindex。
	RootIndex   int
	SpringBones *springbone.Manager
	FirstPerson *VrmFirstPerson
	// Migrated は座標系移行済みの印を持つか。
	Migrated bool
	// Source は読み込み元形式固有のデータ。保存時にアダプタが利用する。
	Source any

	warnings []string
}

// NewVrmModel はVrmModelを生成する。
func NewVrmModel(path string) *VrmModel {
	base := filepath.Base(path)
	return &VrmModel{
		Path:      path,
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		Scene:     scene.NewScene(),
		RootIndex: -1,
	}
}

// AddWarning は警告IDを重複なしで追加する。
func (m *VrmModel) AddWarning(warningID string) {
	if m == nil || warningID == "" {
		return
	}
	for _, existing := range m.warnings {
		if existing == warningID {
			return
		}
	}
	m.warnings = append(m.warnings, warningID)
}

// Warnings は警告ID一覧を返す。
func (m *VrmModel) Warnings() []string {
	if m == nil {
		return nil
	}
	return append([]string{}, m.warnings...)
}

// CanMigrate は座標系移行の対象か返す。
func (m *VrmModel) CanMigrate() bool {
	return m != nil && m.Version == VRM_VERSION_0 && !m.Migrated
}
