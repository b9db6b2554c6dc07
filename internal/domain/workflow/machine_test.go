package workflow

import (
	"errors"
	"testing"
)

func TestMachine_CanFire(t *testing.T) {
	m := NewTaskMachine()

	tests := []struct {
		name     string
		from     Status
		trigger  Trigger
		expected bool
	}{
		{"submit from draft", StatusDraft, TriggerSubmit, true},
		{"submit from pending", StatusPending, TriggerSubmit, true},
		{"submit from in_progress", StatusInProgress, TriggerSubmit, true},
		{"self approve from draft", StatusDraft, TriggerSelfApprove, true},
		{"approve from pending_approval", StatusPendingApproval, TriggerApprove, true},
		{"approve from pending", StatusPending, TriggerApprove, true},
		{"reject from pending_approval", StatusPendingApproval, TriggerReject, true},
		{"checklist complete from in_progress", StatusInProgress, TriggerChecklistComplete, true},
		{"checklist complete from pending_approval", StatusPendingApproval, TriggerChecklistComplete, false},
		{"cancel from draft", StatusDraft, TriggerCancel, true},
		{"cancel from pending_approval", StatusPendingApproval, TriggerCancel, true},
		{"submit from completed", StatusCompleted, TriggerSubmit, false},
		{"approve from rejected", StatusRejected, TriggerApprove, false},
		{"cancel from cancelled", StatusCancelled, TriggerCancel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.CanFire(tt.from, tt.trigger); got != tt.expected {
				t.Errorf("CanFire(%s, %s) = %v, want %v", tt.from, tt.trigger, got, tt.expected)
			}
		})
	}
}

func TestMachine_Fire(t *testing.T) {
	m := NewTaskMachine()

	if err := m.Fire(StatusPendingApproval, TriggerApprove, StatusCompleted); err != nil {
		t.Errorf("Fire() approve to completed: unexpected error %v", err)
	}
	if err := m.Fire(StatusPendingApproval, TriggerApprove, StatusPendingApproval); err != nil {
		t.Errorf("Fire() approve staying pending_approval: unexpected error %v", err)
	}
	if err := m.Fire(StatusDraft, TriggerSelfApprove, StatusCompleted); err != nil {
		t.Errorf("Fire() self approve: unexpected error %v", err)
	}
}

func TestMachine_FireRejectsTerminalSource(t *testing.T) {
	m := NewTaskMachine()

	for _, status := range []Status{StatusCompleted, StatusRejected, StatusCancelled} {
		for _, trigger := range []Trigger{TriggerSubmit, TriggerApprove, TriggerReject, TriggerCancel, TriggerChecklistComplete} {
			err := m.Fire(status, trigger, StatusCompleted)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fire(%s, %s) error = %v, want ErrInvalidTransition", status, trigger, err)
			}
		}
	}
}

func TestMachine_FireRejectsUnreachableTarget(t *testing.T) {
	m := NewTaskMachine()

	err := m.Fire(StatusDraft, TriggerSubmit, StatusRejected)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
}

func TestMachine_PermittedTriggers(t *testing.T) {
	m := NewTaskMachine()

	if got := m.PermittedTriggers(StatusCompleted); len(got) != 0 {
		t.Errorf("PermittedTriggers(completed) = %v, want none", got)
	}

	triggers := m.PermittedTriggers(StatusPendingApproval)
	found := map[Trigger]bool{}
	for _, tr := range triggers {
		found[tr] = true
	}
	for _, want := range []Trigger{TriggerApprove, TriggerReject, TriggerCancel} {
		if !found[want] {
			t.Errorf("PermittedTriggers(pending_approval) missing %s", want)
		}
	}
}
