// 指示: miu200521358
package springbone

import (
	"math"
	"testing"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
)

// newHairScene は hair(0,1,0) -> hair_end(0,-0.5,0) の2ボーン構成を返す。
func newHairScene(t *testing.T) (*scene.Scene, int, int) {
	t.Helper()
	s := scene.NewScene()
	hair := scene.NewNode("hair", scene.NodeKindBone)
	hair.Position = mmath.NewVec3(0, 1, 0)
	hairIndex, err := s.AppendNode(hair, -1)
	if err != nil {
		t.Fatalf("append hair failed: %v", err)
	}
	end := scene.NewNode("hair_end", scene.NodeKindBone)
	end.Position = mmath.NewVec3(0, -0.5, 0)
	endIndex, err := s.AppendNode(end, hairIndex)
	if err != nil {
		t.Fatalf("append hair_end failed: %v", err)
	}
	s.UpdateWorldMatrices()
	return s, hairIndex, endIndex
}

func TestSetInitStateCapturesRestPose(t *testing.T) {
	s, hair, end := newHairScene(t)
	manager := NewManager(s)
	joint := NewJoint(hair, end, JointSettings{})
	manager.AddJoint(joint)

	manager.SetInitState()

	if !joint.IsInitialized() {
		t.Fatalf("joint should be initialized")
	}
	if !joint.BoneAxis().NearEquals(mmath.UNIT_Y_NEG_VEC3, 1e-9) {
		t.Fatalf("bone axis mismatch: %v", joint.BoneAxis())
	}
	if math.Abs(joint.WorldSpaceBoneLength()-0.5) > 1e-9 {
		t.Fatalf("bone length mismatch: %f", joint.WorldSpaceBoneLength())
	}
	if !joint.CurrentTail().NearEquals(mmath.NewVec3(0, 0.5, 0), 1e-9) {
		t.Fatalf("tail mismatch: %v", joint.CurrentTail())
	}
	if !joint.WorldBoneAxis(s).NearEquals(mmath.UNIT_Y_NEG_VEC3, 1e-9) {
		t.Fatalf("world axis mismatch: %v", joint.WorldBoneAxis(s))
	}
}

func TestImplicitLocalTail(t *testing.T) {
	if got := ImplicitLocalTail(mmath.NewVec3(2, 0, 0)); !got.NearEquals(mmath.NewVec3(ImplicitTailLength, 0, 0), 1e-12) {
		t.Fatalf("implicit tail should follow bone direction: %v", got)
	}
	if got := ImplicitLocalTail(mmath.ZERO_VEC3); !got.NearEquals(mmath.NewVec3(0, ImplicitTailLength, 0), 1e-12) {
		t.Fatalf("implicit tail should fall back to up: %v", got)
	}
}

func TestUpdateAppliesGravityAndKeepsLength(t *testing.T) {
	s, hair, end := newHairScene(t)
	manager := NewManager(s)
	joint := NewJoint(hair, end, JointSettings{
		GravityPower: 1,
		GravityDir:   mmath.UNIT_X_VEC3,
		DragForce:    0.4,
	})
	manager.AddJoint(joint)
	manager.SetInitState()

	manager.Update(0.1)

	tail := joint.CurrentTail()
	if tail.X <= 0 {
		t.Fatalf("tail should move along gravity: %v", tail)
	}
	if math.Abs(tail.Distance(s.WorldPosition(hair))-0.5) > 1e-9 {
		t.Fatalf("tail should keep bone length: %v", tail)
	}
	if s.Node(hair).Rotation.IsIdent() {
		t.Fatalf("bone rotation should follow tail")
	}
	if !s.WorldPosition(end).NearEquals(tail, 1e-9) {
		t.Fatalf("child should follow tail: child=%v tail=%v", s.WorldPosition(end), tail)
	}
}

func TestUpdateIgnoresNonPositiveDelta(t *testing.T) {
	s, hair, end := newHairScene(t)
	manager := NewManager(s)
	manager.AddJoint(NewJoint(hair, end, JointSettings{GravityPower: 1, GravityDir: mmath.UNIT_X_VEC3}))
	manager.SetInitState()

	manager.Update(0)

	if !s.Node(hair).Rotation.IsIdent() {
		t.Fatalf("zero delta should not move bones")
	}
}

func TestResetRestoresInitialStateAndCountsGeneration(t *testing.T) {
	s, hair, end := newHairScene(t)
	manager := NewManager(s)
	joint := NewJoint(hair, end, JointSettings{GravityPower: 1, GravityDir: mmath.UNIT_X_VEC3})
	manager.AddJoint(joint)
	manager.SetInitState()
	manager.Update(0.1)

	manager.Reset()

	if manager.ResetGeneration() != 1 {
		t.Fatalf("reset generation mismatch: %d", manager.ResetGeneration())
	}
	if !s.Node(hair).Rotation.IsIdent() {
		t.Fatalf("rotation should be reset")
	}
	if !joint.CurrentTail().NearEquals(joint.PrevTail(), 1e-12) {
		t.Fatalf("tails should match after reset")
	}
}

func TestSphereColliderPushesTailOut(t *testing.T) {
	s, hair, end := newHairScene(t)
	colliderNode := scene.NewNode("head", scene.NodeKindBone)
	colliderNode.Position = mmath.NewVec3(0.05, 0.5, 0)
	colliderIndex, err := s.AppendNode(colliderNode, -1)
	if err != nil {
		t.Fatalf("append collider failed: %v", err)
	}
	group := &ColliderGroup{Name: "head", Colliders: []*Collider{
		{NodeIndex: colliderIndex, Shape: &SphereShape{Radius: 0.1}},
	}}
	manager := NewManager(s)
	manager.AddColliderGroup(group)
	joint := NewJoint(hair, end, JointSettings{})
	joint.ColliderGroups = []*ColliderGroup{group}
	manager.AddJoint(joint)
	manager.SetInitState()

	manager.Update(0.1)

	tail := joint.CurrentTail()
	if tail.X >= 0 {
		t.Fatalf("tail should be pushed away from collider: %v", tail)
	}
	if math.Abs(tail.Distance(s.WorldPosition(hair))-0.5) > 1e-9 {
		t.Fatalf("tail should keep bone length: %v", tail)
	}
}

func TestCapsuleColliderUsesClosestSegmentPoint(t *testing.T) {
	capsule := &CapsuleShape{
		Offset: mmath.NewVec3(0, -1, 0),
		Tail:   mmath.NewVec3(0, 1, 0),
		Radius: 0.1,
	}
	got, hit := capsule.collide(mmath.NewMat4(), mmath.NewVec3(0.05, 0.3, 0), 0)
	if !hit {
		t.Fatalf("expected hit")
	}
	if !got.NearEquals(mmath.NewVec3(0.1, 0.3, 0), 1e-9) {
		t.Fatalf("push out mismatch: %v", got)
	}
	if _, hit := capsule.collide(mmath.NewMat4(), mmath.NewVec3(0, 1.5, 0), 0); hit {
		t.Fatalf("point beyond capsule end should not hit")
	}
}

func TestManagerCollidersAreUnique(t *testing.T) {
	s, hair, end := newHairScene(t)
	collider := &Collider{NodeIndex: hair, Shape: &SphereShape{Radius: 0.1}}
	group := &ColliderGroup{Colliders: []*Collider{collider, collider}}
	manager := NewManager(s)
	manager.AddColliderGroup(group)
	joint := NewJoint(hair, end, JointSettings{})
	joint.ColliderGroups = []*ColliderGroup{group}
	manager.AddJoint(joint)

	if got := len(manager.Colliders()); got != 1 {
		t.Fatalf("collider count mismatch: %d", got)
	}
}

func TestRestoreDynamicsDerivesRotationFromTail(t *testing.T) {
	s, hair, end := newHairScene(t)
	manager := NewManager(s)
	joint := NewJoint(hair, end, JointSettings{})
	manager.AddJoint(joint)
	manager.SetInitState()

	tail := mmath.NewVec3(0.5, 1, 0)
	joint.RestoreDynamics(s, tail, tail)

	if !s.WorldPosition(end).NearEquals(tail, 1e-9) {
		t.Fatalf("child should point at restored tail: %v", s.WorldPosition(end))
	}
}
