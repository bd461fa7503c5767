package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
)

// OpKind identifies an optimistic mutation kind.
type OpKind string

const (
	OpAdd    OpKind = "add"
	OpRemove OpKind = "remove"
	OpUpdate OpKind = "update"
)

// OptimisticUpdate is the bookkeeping record for one in-flight mutation.
// For OpAdd, Record holds the temporary member so a concurrent fetch can
// re-apply it; for OpRemove and OpUpdate, Record holds the pre-mutation
// snapshot used for exact rollback. At most one record exists per member id.
type OptimisticUpdate struct {
	MemberID  uuid.UUID
	Kind      OpKind
	Record    domain.Member
	Index     int         // original list position, for order-exact remove rollback
	NewRole   domain.Role // target role for OpUpdate re-apply after a fetch
	AppliedAt time.Time
}

// workspaceState is the cached state for a single workspace. Values are
// treated as immutable; the reducer returns fresh copies.
type workspaceState struct {
	Members []domain.Member
	Loading bool
	Err     error
	Pending []OptimisticUpdate
}

type action interface{ isAction() }

type fetchStarted struct{}
type fetchSucceeded struct{ members []domain.Member }
type fetchFailed struct{ err error }
type optimisticAdd struct{ member domain.Member }
type optimisticRemove struct{ memberID uuid.UUID }
type optimisticRoleChange struct {
	memberID uuid.UUID
	role     domain.Role
}
type opConfirmed struct {
	memberID uuid.UUID
	member   *domain.Member // authoritative row, nil for removes
}
type opRolledBack struct {
	memberID uuid.UUID
	err      error
}
type eventIngested struct{ event domain.MemberEvent }

func (fetchStarted) isAction()         {}
func (fetchSucceeded) isAction()       {}
func (fetchFailed) isAction()          {}
func (optimisticAdd) isAction()        {}
func (optimisticRemove) isAction()     {}
func (optimisticRoleChange) isAction() {}
func (opConfirmed) isAction()          {}
func (opRolledBack) isAction()         {}
func (eventIngested) isAction()        {}

// reduce is the pure state transition at the heart of the store. Rollback
// actions rely solely on snapshots captured at dispatch time, so the logic
// is testable without any network mock.
func reduce(s workspaceState, a action) workspaceState {
	switch act := a.(type) {
	case fetchStarted:
		s.Loading = true
		s.Err = nil
		return s

	case fetchFailed:
		s.Loading = false
		s.Err = act.err
		return s

	case fetchSucceeded:
		// The fetched list is authoritative, but unsettled optimistic
		// entries must survive a blind replace: re-apply them on top.
		members := dedupeByID(act.members)
		for _, p := range s.Pending {
			switch p.Kind {
			case OpAdd:
				if indexOf(members, p.MemberID) < 0 {
					members = append(members, p.Record)
				}
			case OpRemove:
				members = deleteAt(members, indexOf(members, p.MemberID))
			case OpUpdate:
				if i := indexOf(members, p.MemberID); i >= 0 {
					members[i].Role = p.NewRole
				}
			}
		}
		s.Members = members
		s.Loading = false
		s.Err = nil
		return s

	case optimisticAdd:
		if indexOf(s.Members, act.member.ID) >= 0 {
			return s
		}
		s.Members = append(copyMembers(s.Members), act.member)
		s.Pending = append(copyPending(s.Pending), OptimisticUpdate{
			MemberID:  act.member.ID,
			Kind:      OpAdd,
			Record:    act.member,
			AppliedAt: time.Now(),
		})
		return s

	case optimisticRemove:
		i := indexOf(s.Members, act.memberID)
		// A second record for the same id would corrupt settle bookkeeping:
		// the wrong snapshot could be consumed on confirm or rollback.
		if i < 0 || pendingIndex(s.Pending, act.memberID) >= 0 {
			return s
		}
		s.Pending = append(copyPending(s.Pending), OptimisticUpdate{
			MemberID:  act.memberID,
			Kind:      OpRemove,
			Record:    s.Members[i],
			Index:     i,
			AppliedAt: time.Now(),
		})
		s.Members = deleteAt(copyMembers(s.Members), i)
		return s

	case optimisticRoleChange:
		i := indexOf(s.Members, act.memberID)
		if i < 0 || pendingIndex(s.Pending, act.memberID) >= 0 {
			return s
		}
		s.Pending = append(copyPending(s.Pending), OptimisticUpdate{
			MemberID:  act.memberID,
			Kind:      OpUpdate,
			Record:    s.Members[i],
			NewRole:   act.role,
			AppliedAt: time.Now(),
		})
		s.Members = copyMembers(s.Members)
		s.Members[i].Role = act.role
		return s

	case opConfirmed:
		p, rest := takePending(s.Pending, act.memberID)
		s.Pending = rest
		if p == nil {
			return s
		}
		members := copyMembers(s.Members)
		switch p.Kind {
		case OpAdd:
			// Swap the temporary record for the authoritative row so the
			// temp id never leaks into later operations.
			i := indexOf(members, p.MemberID)
			if act.member == nil {
				if i >= 0 {
					members[i].Pending = false
				}
				break
			}
			if j := indexOf(members, act.member.ID); j >= 0 && j != i {
				// Realtime already delivered the authoritative row; drop
				// the temp record instead of duplicating it.
				members = deleteAt(members, i)
			} else if i >= 0 {
				members[i] = *act.member
			} else {
				members = append(members, *act.member)
			}
		case OpUpdate:
			if act.member != nil {
				if i := indexOf(members, act.member.ID); i >= 0 {
					members[i] = *act.member
				}
			}
		}
		s.Members = members
		return s

	case opRolledBack:
		p, rest := takePending(s.Pending, act.memberID)
		s.Pending = rest
		s.Err = act.err
		if p == nil {
			return s
		}
		members := copyMembers(s.Members)
		switch p.Kind {
		case OpAdd:
			if i := indexOf(members, p.MemberID); i >= 0 {
				members = deleteAt(members, i)
			}
		case OpRemove:
			if indexOf(members, p.MemberID) < 0 {
				members = insertAt(members, p.Record, p.Index)
			}
		case OpUpdate:
			if i := indexOf(members, p.MemberID); i >= 0 {
				members[i] = p.Record
			}
		}
		s.Members = members
		return s

	case eventIngested:
		ev := act.event
		// A pending optimistic record means a locally initiated operation is
		// in flight for this id; local intent wins until it settles.
		if pendingIndex(s.Pending, ev.MemberID) >= 0 {
			return s
		}
		switch ev.Type {
		case domain.EventMemberAdded:
			if ev.Member == nil || indexOf(s.Members, ev.MemberID) >= 0 {
				return s
			}
			s.Members = append(copyMembers(s.Members), *ev.Member)
		case domain.EventMemberUpdated:
			i := indexOf(s.Members, ev.MemberID)
			if ev.Member == nil || i < 0 {
				return s
			}
			s.Members = copyMembers(s.Members)
			s.Members[i] = *ev.Member
		case domain.EventMemberRemoved:
			i := indexOf(s.Members, ev.MemberID)
			if i < 0 {
				return s
			}
			s.Members = deleteAt(copyMembers(s.Members), i)
		}
		return s
	}
	return s
}

func indexOf(members []domain.Member, id uuid.UUID) int {
	for i, m := range members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func pendingIndex(pending []OptimisticUpdate, id uuid.UUID) int {
	for i, p := range pending {
		if p.MemberID == id {
			return i
		}
	}
	return -1
}

func takePending(pending []OptimisticUpdate, id uuid.UUID) (*OptimisticUpdate, []OptimisticUpdate) {
	i := pendingIndex(pending, id)
	if i < 0 {
		return nil, pending
	}
	p := pending[i]
	rest := make([]OptimisticUpdate, 0, len(pending)-1)
	rest = append(rest, pending[:i]...)
	rest = append(rest, pending[i+1:]...)
	return &p, rest
}

func copyMembers(members []domain.Member) []domain.Member {
	out := make([]domain.Member, len(members))
	copy(out, members)
	return out
}

func copyPending(pending []OptimisticUpdate) []OptimisticUpdate {
	out := make([]OptimisticUpdate, len(pending))
	copy(out, pending)
	return out
}

func deleteAt(members []domain.Member, i int) []domain.Member {
	if i < 0 || i >= len(members) {
		return members
	}
	return append(members[:i], members[i+1:]...)
}

func insertAt(members []domain.Member, m domain.Member, i int) []domain.Member {
	if i < 0 {
		i = 0
	}
	if i > len(members) {
		i = len(members)
	}
	members = append(members, domain.Member{})
	copy(members[i+1:], members[i:])
	members[i] = m
	return members
}

func dedupeByID(members []domain.Member) []domain.Member {
	seen := make(map[uuid.UUID]struct{}, len(members))
	out := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
