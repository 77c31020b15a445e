// 指示: miu200521358
package springbone

import (
	"sort"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
)

// Manager は1モデル分の揺れ物ジョイントとコライダーを管理する。
type Manager struct {
	scene           *scene.Scene
	joints          []*Joint
	colliderGroups  []*ColliderGroup
	resetGeneration int
}

// NewManager はManagerを生成する。
func NewManager(s *scene.Scene) *Manager {
	return &Manager{
		scene:          s,
		joints:         make([]*Joint, 0),
		colliderGroups: make([]*ColliderGroup, 0),
	}
}

// Scene は対象Sceneを返す。
func (m *Manager) Scene() *scene.Scene {
	return m.scene
}

// AddJoint はジョイントを追加する。
func (m *Manager) AddJoint(joint *Joint) {
	if joint == nil {
		return
	}
	m.joints = append(m.joints, joint)
}

// AddColliderGroup はコライダーグループを追加する。
func (m *Manager) AddColliderGroup(group *ColliderGroup) {
	if group == nil {
		return
	}
	m.colliderGroups = append(m.colliderGroups, group)
}

// Joints はジョイント一覧を返す。SetInitState後は深さ順。
func (m *Manager) Joints() []*Joint {
	return m.joints
}

// ColliderGroups はコライダーグループ一覧を返す。
func (m *Manager) ColliderGroups() []*ColliderGroup {
	return m.colliderGroups
}

// Colliders は全グループのコライダーを重複なしで返す。
func (m *Manager) Colliders() []*Collider {
	seen := make(map[*Collider]struct{})
	colliders := make([]*Collider, 0)
	appendCollider := func(collider *Collider) {
		if collider == nil {
			return
		}
		if _, ok := seen[collider]; ok {
			return
		}
		seen[collider] = struct{}{}
		colliders = append(colliders, collider)
	}
	for _, group := range m.colliderGroups {
		if group == nil {
			continue
		}
		for _, collider := range group.Colliders {
			appendCollider(collider)
		}
	}
	for _, joint := range m.joints {
		for _, group := range joint.ColliderGroups {
			if group == nil {
				continue
			}
			for _, collider := range group.Colliders {
				appendCollider(collider)
			}
		}
	}
	return colliders
}

// ResetGeneration はReset呼び出し回数を返す。
func (m *Manager) ResetGeneration() int {
	return m.resetGeneration
}

// SetInitState は現在の姿勢を全ジョイントの初期状態として取り込む。
func (m *Manager) SetInitState() {
	m.scene.UpdateWorldMatrices()
	m.sortJointsByDepth()
	for _, joint := range m.joints {
		joint.setInitState(m.scene)
	}
}

// Reset は全ジョイントを初期状態へ戻す。
func (m *Manager) Reset() {
	m.scene.UpdateWorldMatrices()
	for _, joint := range m.joints {
		joint.reset(m.scene)
	}
	m.resetGeneration++
}

// Update は dt 秒分シミュレーションを進める。
func (m *Manager) Update(dt float64) {
	if dt <= 0 {
		return
	}
	m.scene.UpdateWorldMatrices()
	for _, joint := range m.joints {
		joint.update(m.scene, dt)
	}
}

// sortJointsByDepth は親側のジョイントが先に処理されるよう並べ替える。
func (m *Manager) sortJointsByDepth() {
	sort.SliceStable(m.joints, func(i, j int) bool {
		return m.scene.Depth(m.joints[i].BoneIndex) < m.scene.Depth(m.joints[j].BoneIndex)
	})
}
