package workflow

import (
	"errors"
	"testing"
)

func TestApprovalWorkflowFor_AllCategories(t *testing.T) {
	for _, category := range Categories() {
		wf, err := ApprovalWorkflowFor(category)
		if err != nil {
			t.Fatalf("ApprovalWorkflowFor(%s) unexpected error: %v", category, err)
		}
		if wf.TotalStages() < 1 {
			t.Errorf("workflow for %s has %d stages, want >= 1", category, wf.TotalStages())
		}
		if wf.TotalStages() != len(wf.Stages) {
			t.Errorf("TotalStages() = %d, want %d", wf.TotalStages(), len(wf.Stages))
		}
	}
}

func TestApprovalWorkflowFor_UnknownCategory(t *testing.T) {
	_, err := ApprovalWorkflowFor(Category("harvest_party"))
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("error = %v, want ErrUnknownCategory", err)
	}
}

func TestApprovalWorkflowFor_MortalityDiscard(t *testing.T) {
	wf, err := ApprovalWorkflowFor(CategoryMortalityDiscard)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Grower", "Manager", "QA"}
	if wf.TotalStages() != len(want) {
		t.Fatalf("TotalStages() = %d, want %d", wf.TotalStages(), len(want))
	}
	for i, label := range want {
		if wf.StageLabel(i) != label {
			t.Errorf("StageLabel(%d) = %q, want %q", i, wf.StageLabel(i), label)
		}
	}
}

func TestStageLabel_OutOfRange(t *testing.T) {
	wf, _ := ApprovalWorkflowFor(CategoryGeneral)
	if got := wf.StageLabel(-1); got != "" {
		t.Errorf("StageLabel(-1) = %q, want empty", got)
	}
	if got := wf.StageLabel(wf.TotalStages()); got != "" {
		t.Errorf("StageLabel(past end) = %q, want empty", got)
	}
}
