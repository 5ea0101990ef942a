package main

// modalKind enumerates the dialogs a screen can show. Exactly one kind is
// active at a time.
type modalKind string

const (
	modalNone    modalKind = "none"
	modalCreate  modalKind = "create"
	modalEdit    modalKind = "edit"
	modalDelete  modalKind = "delete"
	modalDetails modalKind = "details"
	modalApprove modalKind = "approve"
)

func isModalKind(kind modalKind) bool {
	switch kind {
	case modalNone, modalCreate, modalEdit, modalDelete, modalDetails, modalApprove:
		return true
	default:
		return false
	}
}

// modalState is the per-screen dialog state machine. Opening a modal
// implicitly closes whatever was open (no stacking); closing always clears the
// target record.
type modalState struct {
	kind     modalKind
	targetID string
}

func newModalState() *modalState {
	return &modalState{kind: modalNone}
}

func (m *modalState) Kind() modalKind { return m.kind }

// TargetID returns the id of the record the open modal operates on. Empty for
// Closed and Create.
func (m *modalState) TargetID() string { return m.targetID }

// Open transitions to the given dialog. Create carries no target; every other
// kind requires one. Invalid transitions are refused and leave the machine in
// its current state.
func (m *modalState) Open(kind modalKind, targetID string) bool {
	if !isModalKind(kind) || kind == modalNone {
		return false
	}
	if kind == modalCreate {
		m.kind = modalCreate
		m.targetID = ""
		return true
	}
	if targetID == "" {
		return false
	}
	m.kind = kind
	m.targetID = targetID
	return true
}

// Close returns to the Closed state and clears the target record.
func (m *modalState) Close() {
	m.kind = modalNone
	m.targetID = ""
}

func (m *modalState) IsOpen() bool { return m.kind != modalNone }
