// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/springbone"
	"github.com/pkg/errors"
)

const virtualTailSuffix = "_virtual_tail"

// VirtualTailPlan は子を持たないジョイントの暗黙末端の移行前ワールド座標を表す。
type VirtualTailPlan struct {
	Joint         *springbone.Joint
	WorldPosition mmath.Vec3
}

// VirtualTails は合成した仮想末端ノードの記録を表す。
type VirtualTails struct {
	baseLength int
	joints     []*springbone.Joint
}

// Len は合成した仮想末端の数を返す。
func (v *VirtualTails) Len() int {
	if v == nil {
		return 0
	}
	return len(v.joints)
}

// PlanVirtualTails は子ボーンを持たないジョイントについて、移行前の暗黙末端のワールド座標を記録する。
// 暗黙末端はボーンのローカル位置方向に一定長だけ伸ばした点とする。
func PlanVirtualTails(s *scene.Scene, manager *springbone.Manager) []VirtualTailPlan {
	plans := make([]VirtualTailPlan, 0)
	if manager == nil {
		return plans
	}
	s.UpdateWorldMatrices()
	for _, joint := range manager.Joints() {
		if joint == nil || s.Node(joint.ChildIndex) != nil {
			continue
		}
		bone := s.Node(joint.BoneIndex)
		if bone == nil {
			continue
		}
		localTail := springbone.ImplicitLocalTail(bone.Position)
		plans = append(plans, VirtualTailPlan{
			Joint:         joint,
			WorldPosition: s.WorldMatrix(joint.BoneIndex).MulVec3(localTail),
		})
	}
	return plans
}

// SynthesizeVirtualTails は移行後のボーンに仮想末端ノードを追加し、ジョイントの子に設定する。
// 仮想末端はメッシュを持たず、スキニングにも使われない。
func SynthesizeVirtualTails(s *scene.Scene, plans []VirtualTailPlan) (*VirtualTails, error) {
	tails := &VirtualTails{baseLength: s.Len()}
	for _, plan := range plans {
		if plan.Joint == nil {
			continue
		}
		bone := s.Node(plan.Joint.BoneIndex)
		if bone == nil {
			continue
		}
		node := scene.NewNode(bone.Name+virtualTailSuffix, scene.NodeKindBone)
		node.IsVirtual = true
		node.Position = s.WorldMatrix(bone.Index).Inverted().MulVec3(RotateY180(plan.WorldPosition))
		index, err := s.AppendNode(node, bone.Index)
		if err != nil {
			return tails, errors.Wrapf(err, "仮想末端の追加に失敗しました: bone=%s", bone.Name)
		}
		s.UpdateNodeWorldMatrix(index)
		plan.Joint.ChildIndex = index
		tails.joints = append(tails.joints, plan.Joint)
		logMigrateDebug("仮想末端を追加: bone=%s node=%d local=%v", bone.Name, index, node.Position)
	}
	return tails, nil
}

// DiscardVirtualTails は合成した仮想末端ノードを取り除き、ジョイントを暗黙末端に戻す。
// SetInitState で取り込んだボーン軸は保持される。
func DiscardVirtualTails(s *scene.Scene, tails *VirtualTails) error {
	if tails == nil {
		return nil
	}
	for _, joint := range tails.joints {
		joint.ChildIndex = -1
	}
	tails.joints = nil
	return s.TruncateVirtualNodes(tails.baseLength)
}
