// 指示: miu200521358
package minteractor

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/model"
	"github.com/miu200521358/mu_vrmmigrate/pkg/domain/scene"
	"github.com/miu200521358/mu_vrmmigrate/pkg/shared/merr"
)

// memoryRepository はテスト用のメモリ上リポジトリ。
type memoryRepository struct {
	modelData *model.VrmModel
	loadErr   error
	saved     map[string]*model.VrmModel
}

func (r *memoryRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vrm")
}

func (r *memoryRepository) Load(path string) (*model.VrmModel, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.modelData, nil
}

func (r *memoryRepository) Save(path string, modelData *model.VrmModel) error {
	if r.saved == nil {
		r.saved = map[string]*model.VrmModel{}
	}
	r.saved[path] = modelData
	return nil
}

// progressRecorder は進捗イベントを記録する。
type progressRecorder struct {
	events []MigrateProgressEventType
}

func (r *progressRecorder) ReportMigrateProgress(event MigrateProgressEvent) {
	r.events = append(r.events, event.Type)
}

// newUsecaseTestModel は1ボーン1メッシュのVRM0モデルを生成する。
func newUsecaseTestModel(t *testing.T) *model.VrmModel {
	t.Helper()
	modelData := model.NewVrmModel("sample.vrm")
	modelData.Version = model.VRM_VERSION_0
	s := modelData.Scene
	bone := appendTestNode(t, s, "hips", scene.NodeKindBone, -1, mmath.NewVec3(0.1, 1, 0.2))
	skeleton := scene.NewSkeleton("skin", []int{bone})
	appendTestMesh(t, s, "body", -1, skeleton, mmath.NewVec3(1, 1, 1))
	root := appendTestNode(t, s, "__scene_root__", scene.NodeKindGeneric, -1, mmath.ZERO_VEC3)
	if err := s.SetParent(bone, root); err != nil {
		t.Fatalf("set parent failed: %v", err)
	}
	if err := s.SetParent(1, root); err != nil {
		t.Fatalf("set parent failed: %v", err)
	}
	modelData.RootIndex = root
	bindSkeleton(s, skeleton)
	return modelData
}

func TestVrmMigrateUsecaseMigrate(t *testing.T) {
	repo := &memoryRepository{modelData: newUsecaseTestModel(t)}
	reporter := &progressRecorder{}
	uc := NewVrmMigrateUsecase(VrmMigrateUsecaseDeps{ModelReader: repo, ModelWriter: repo})
	inPath := filepath.Join("models", "sample.vrm")

	result, err := uc.Migrate(MigrateRequest{InputPath: inPath, ProgressReporter: reporter})
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	wantPath := filepath.Join("models", "sample_vrm1.vrm")
	if result.OutputPath != wantPath {
		t.Fatalf("output path mismatch: got=%s want=%s", result.OutputPath, wantPath)
	}
	if repo.saved[wantPath] != result.Model {
		t.Fatalf("model should be saved to output path")
	}
	if !result.Model.Migrated {
		t.Fatalf("model should be marked migrated")
	}
	if got := result.Model.Scene.WorldPosition(0); !got.NearEquals(mmath.NewVec3(-0.1, 1, -0.2), 1e-9) {
		t.Fatalf("bone should be migrated: %v", got)
	}
	wantEvents := []MigrateProgressEventType{
		MigrateProgressEventTypeInputValidated,
		MigrateProgressEventTypeOutputPathResolved,
		MigrateProgressEventTypeModelLoaded,
		MigrateProgressEventTypeModelValidated,
		MigrateProgressEventTypeSkeletonMigrated,
		MigrateProgressEventTypeModelSaved,
	}
	if len(reporter.events) != len(wantEvents) {
		t.Fatalf("event count mismatch: %v", reporter.events)
	}
	for i := range wantEvents {
		if reporter.events[i] != wantEvents[i] {
			t.Fatalf("event mismatch: got=%v want=%v", reporter.events, wantEvents)
		}
	}
}

func TestVrmMigrateUsecaseRejectsMigratedModel(t *testing.T) {
	modelData := newUsecaseTestModel(t)
	modelData.Migrated = true
	repo := &memoryRepository{modelData: modelData}
	uc := NewVrmMigrateUsecase(VrmMigrateUsecaseDeps{ModelReader: repo, ModelWriter: repo})

	_, err := uc.Migrate(MigrateRequest{InputPath: "sample.vrm"})
	if merr.ExtractErrorID(err) != merr.MigrationAlreadyDoneErrorID {
		t.Fatalf("expected already migrated error: %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("rejected model should not be saved")
	}
}

func TestVrmMigrateUsecaseRejectsVrm1(t *testing.T) {
	modelData := newUsecaseTestModel(t)
	modelData.Version = model.VRM_VERSION_1
	repo := &memoryRepository{modelData: modelData}
	uc := NewVrmMigrateUsecase(VrmMigrateUsecaseDeps{ModelReader: repo, ModelWriter: repo})

	if _, err := uc.Migrate(MigrateRequest{InputPath: "sample.vrm"}); err == nil {
		t.Fatalf("expected error for VRM1 model")
	}
}

func TestVrmMigrateUsecaseReportsAssetError(t *testing.T) {
	modelData := model.NewVrmModel("empty.vrm")
	modelData.Version = model.VRM_VERSION_0
	modelData.RootIndex = appendTestNode(t, modelData.Scene, "root", scene.NodeKindGeneric, -1, mmath.ZERO_VEC3)
	repo := &memoryRepository{modelData: modelData}
	uc := NewVrmMigrateUsecase(VrmMigrateUsecaseDeps{ModelReader: repo, ModelWriter: repo})

	_, err := uc.Migrate(MigrateRequest{InputPath: "empty.vrm"})
	if merr.ExtractErrorID(err) != merr.MigrationAssetErrorID {
		t.Fatalf("expected asset error id: %v", err)
	}
	if !strings.Contains(err.Error(), "SkinnedMesh") {
		t.Fatalf("message should mention SkinnedMesh: %v", err)
	}
}

func TestVrmMigrateUsecaseMigratePropagatesLoadError(t *testing.T) {
	loadErr := errors.New("broken")
	repo := &memoryRepository{loadErr: loadErr}
	uc := NewVrmMigrateUsecase(VrmMigrateUsecaseDeps{ModelReader: repo, ModelWriter: repo})

	if _, err := uc.Migrate(MigrateRequest{InputPath: "sample.vrm"}); !errors.Is(err, loadErr) {
		t.Fatalf("load error should propagate: %v", err)
	}
}

func TestVrmMigrateUsecaseMigrateRequiresVrmExt(t *testing.T) {
	uc := NewVrmMigrateUsecase(VrmMigrateUsecaseDeps{})
	if _, err := uc.Migrate(MigrateRequest{InputPath: "sample.pmx"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMigrateModelRebasesFirstPersonOffset(t *testing.T) {
	modelData := model.NewVrmModel("eye.vrm")
	modelData.Version = model.VRM_VERSION_0
	s := modelData.Scene
	root := appendTestNode(t, s, "__scene_root__", scene.NodeKindGeneric, -1, mmath.ZERO_VEC3)
	hips := appendTestNode(t, s, "hips", scene.NodeKindBone, root, mmath.NewVec3(0, 1, 0))
	head := appendTestNode(t, s, "head", scene.NodeKindBone, hips, mmath.NewVec3(0, 0.5, 0))
	s.Node(head).Rotation = mmath.NewQuaternionFromAxisAngle(mmath.UNIT_Y_VEC3, math.Pi/2)
	skeleton := scene.NewSkeleton("skin", []int{hips, head})
	appendTestMesh(t, s, "body", root, skeleton, mmath.NewVec3(0, 1.5, 0))
	bindSkeleton(s, skeleton)
	modelData.RootIndex = root
	modelData.FirstPerson = &model.VrmFirstPerson{BoneIndex: head, Offset: mmath.NewVec3(0, 0.06, 0.1)}
	eyeBefore := s.WorldMatrix(head).MulVec3(modelData.FirstPerson.Offset)

	if err := MigrateModel(modelData, false); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if got := modelData.FirstPerson.Offset; !got.NearEquals(mmath.NewVec3(-0.1, 0.06, 0), 1e-9) {
		t.Fatalf("first person offset mismatch: %v", got)
	}
	if got := s.WorldMatrix(head).MulVec3(modelData.FirstPerson.Offset); !got.NearEquals(RotateY180(eyeBefore), 1e-9) {
		t.Fatalf("first person eye mismatch: got=%v want=%v", got, RotateY180(eyeBefore))
	}
}

func TestResolveOutputPath(t *testing.T) {
	got, err := ResolveOutputPath(filepath.Join("dir", "a.vrm"), "", "_mig")
	if err != nil || got != filepath.Join("dir", "a_mig.vrm") {
		t.Fatalf("default path mismatch: got=%s err=%v", got, err)
	}
	if _, err := ResolveOutputPath("a.vrm", "a.vrm", ""); err == nil {
		t.Fatalf("same path should be rejected")
	}
	if _, err := ResolveOutputPath("a.vrm", "a.glb", ""); err == nil {
		t.Fatalf("non vrm output should be rejected")
	}
}
