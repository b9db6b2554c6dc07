package workflow

import "fmt"

// Machine is a stateless transition table for the task approval lifecycle.
// It answers whether a trigger is legal from a given status and what the
// permitted target statuses are; the engine owns the stage arithmetic that
// picks between targets (e.g. advance vs. complete on approve).
type Machine struct {
	rules map[Status]map[Trigger][]Status
}

// NewTaskMachine builds the transition table for the task lifecycle:
//
//	draft -> pending/in_progress -> pending_approval -> completed | rejected
//
// cancelled is reachable from every non-terminal status via administrative
// action and, like the other terminal statuses, permits nothing further.
func NewTaskMachine() *Machine {
	m := &Machine{rules: make(map[Status]map[Trigger][]Status)}

	for _, s := range []Status{StatusDraft, StatusPending, StatusInProgress} {
		m.permit(s, TriggerSubmit, StatusPendingApproval)
		m.permit(s, TriggerSelfApprove, StatusCompleted)
		m.permit(s, TriggerChecklistComplete, StatusCompleted)
		m.permit(s, TriggerReject, StatusRejected)
		m.permit(s, TriggerCancel, StatusCancelled)
	}

	m.permit(StatusPendingApproval, TriggerApprove, StatusPendingApproval, StatusCompleted)
	m.permit(StatusPendingApproval, TriggerReject, StatusRejected)
	m.permit(StatusPendingApproval, TriggerCancel, StatusCancelled)

	// Generator-created tasks start in pending/in_progress and may be
	// approved without an explicit submit step.
	m.permit(StatusPending, TriggerApprove, StatusPendingApproval, StatusCompleted)
	m.permit(StatusInProgress, TriggerApprove, StatusPendingApproval, StatusCompleted)
	m.permit(StatusDraft, TriggerApprove, StatusPendingApproval, StatusCompleted)

	return m
}

func (m *Machine) permit(from Status, trigger Trigger, to ...Status) {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid source status: %s", from))
	}
	for _, t := range to {
		if !t.IsValid() {
			panic(fmt.Sprintf("invalid target status: %s", t))
		}
	}
	if m.rules[from] == nil {
		m.rules[from] = make(map[Trigger][]Status)
	}
	m.rules[from][trigger] = append(m.rules[from][trigger], to...)
}

// CanFire returns true if the trigger is permitted from the given status
func (m *Machine) CanFire(from Status, trigger Trigger) bool {
	return len(m.rules[from][trigger]) > 0
}

// Fire validates that trigger leads from the current status to the target
// status. Terminal statuses permit nothing.
func (m *Machine) Fire(from Status, trigger Trigger, to Status) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: task is %s", ErrInvalidTransition, from)
	}
	targets, ok := m.rules[from][trigger]
	if !ok || len(targets) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, from)
	}
	for _, t := range targets {
		if t == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s from %s does not reach %s", ErrInvalidTransition, trigger, from, to)
}

// PermittedTriggers returns the triggers that can fire from the given status
func (m *Machine) PermittedTriggers(from Status) []Trigger {
	triggers := make([]Trigger, 0, len(m.rules[from]))
	for t := range m.rules[from] {
		triggers = append(triggers, t)
	}
	return triggers
}
