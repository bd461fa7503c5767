package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(role domain.Role) domain.Member {
	id := uuid.New()
	return domain.Member{
		ID:     id,
		UserID: uuid.New(),
		Role:   role,
		User:   domain.User{Email: id.String() + "@example.com"},
	}
}

func ids(members []domain.Member) []uuid.UUID {
	out := make([]uuid.UUID, len(members))
	for i, m := range members {
		out[i] = m.ID
	}
	return out
}

func TestReduce_FetchLifecycle(t *testing.T) {
	a, b := member(domain.RoleAdmin), member(domain.RoleViewer)

	s := reduce(workspaceState{Err: assert.AnError}, fetchStarted{})
	assert.True(t, s.Loading)
	assert.NoError(t, s.Err)

	s = reduce(s, fetchSucceeded{members: []domain.Member{a, b}})
	assert.False(t, s.Loading)
	assert.NoError(t, s.Err)
	assert.Equal(t, []domain.Member{a, b}, s.Members)

	s = reduce(reduce(s, fetchStarted{}), fetchFailed{err: assert.AnError})
	assert.False(t, s.Loading)
	assert.ErrorIs(t, s.Err, assert.AnError)
	// A failed refetch keeps the previously cached list.
	assert.Equal(t, []domain.Member{a, b}, s.Members)
}

func TestReduce_FetchDedupesByID(t *testing.T) {
	a := member(domain.RoleViewer)
	s := reduce(workspaceState{}, fetchSucceeded{members: []domain.Member{a, a}})
	assert.Len(t, s.Members, 1)
}

func TestReduce_OptimisticAdd(t *testing.T) {
	existing := member(domain.RoleAdmin)
	temp := member(domain.RoleViewer)
	temp.Pending = true

	s := workspaceState{Members: []domain.Member{existing}}
	s = reduce(s, optimisticAdd{member: temp})

	assert.Equal(t, []uuid.UUID{existing.ID, temp.ID}, ids(s.Members))
	require.Len(t, s.Pending, 1)
	assert.Equal(t, OpAdd, s.Pending[0].Kind)
	assert.Equal(t, temp.ID, s.Pending[0].MemberID)

	t.Run("confirm swaps temp for authoritative row", func(t *testing.T) {
		authoritative := temp
		authoritative.ID = uuid.New()
		authoritative.Pending = false

		got := reduce(s, opConfirmed{memberID: temp.ID, member: &authoritative})
		assert.Equal(t, []uuid.UUID{existing.ID, authoritative.ID}, ids(got.Members))
		assert.Empty(t, got.Pending)
		assert.False(t, got.Members[1].Pending)
	})

	t.Run("rollback removes the temp row entirely", func(t *testing.T) {
		got := reduce(s, opRolledBack{memberID: temp.ID, err: assert.AnError})
		assert.Equal(t, []uuid.UUID{existing.ID}, ids(got.Members))
		assert.Empty(t, got.Pending)
		assert.ErrorIs(t, got.Err, assert.AnError)
	})

	t.Run("duplicate id is a no-op", func(t *testing.T) {
		got := reduce(s, optimisticAdd{member: temp})
		assert.Len(t, got.Members, 2)
		assert.Len(t, got.Pending, 1)
	})
}

func TestReduce_ConfirmAddAfterRealtimeDelivery(t *testing.T) {
	temp := member(domain.RoleViewer)
	temp.Pending = true
	authoritative := temp
	authoritative.ID = uuid.New()
	authoritative.Pending = false

	// The authoritative row landed via realtime while the insert was in
	// flight; confirmation must not duplicate the member.
	s := workspaceState{
		Members: []domain.Member{temp, authoritative},
		Pending: []OptimisticUpdate{{MemberID: temp.ID, Kind: OpAdd, Record: temp}},
	}
	got := reduce(s, opConfirmed{memberID: temp.ID, member: &authoritative})
	assert.Equal(t, []uuid.UUID{authoritative.ID}, ids(got.Members))
	assert.Empty(t, got.Pending)
}

func TestReduce_OptimisticRemove(t *testing.T) {
	a, b, c := member(domain.RoleAdmin), member(domain.RoleTeamLead), member(domain.RoleViewer)
	s := workspaceState{Members: []domain.Member{a, b, c}}

	s = reduce(s, optimisticRemove{memberID: b.ID})
	assert.Equal(t, []uuid.UUID{a.ID, c.ID}, ids(s.Members))
	require.Len(t, s.Pending, 1)
	assert.Equal(t, OpRemove, s.Pending[0].Kind)
	assert.Equal(t, 1, s.Pending[0].Index)

	t.Run("rollback restores the exact record at its original index", func(t *testing.T) {
		got := reduce(s, opRolledBack{memberID: b.ID, err: assert.AnError})
		assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, ids(got.Members))
		assert.Equal(t, b, got.Members[1])
		assert.Empty(t, got.Pending)
	})

	t.Run("confirm just settles the pending record", func(t *testing.T) {
		got := reduce(s, opConfirmed{memberID: b.ID})
		assert.Equal(t, []uuid.UUID{a.ID, c.ID}, ids(got.Members))
		assert.Empty(t, got.Pending)
	})

	t.Run("removing an unknown id is a no-op", func(t *testing.T) {
		got := reduce(s, optimisticRemove{memberID: uuid.New()})
		assert.Len(t, got.Pending, 1)
	})
}

func TestReduce_OptimisticRoleChange(t *testing.T) {
	m := member(domain.RoleViewer)
	s := workspaceState{Members: []domain.Member{m}}

	s = reduce(s, optimisticRoleChange{memberID: m.ID, role: domain.RoleTeamLead})
	assert.Equal(t, domain.RoleTeamLead, s.Members[0].Role)
	require.Len(t, s.Pending, 1)
	assert.Equal(t, domain.RoleViewer, s.Pending[0].Record.Role)

	t.Run("rollback restores the original snapshot", func(t *testing.T) {
		got := reduce(s, opRolledBack{memberID: m.ID, err: assert.AnError})
		assert.Equal(t, m, got.Members[0])
		assert.Empty(t, got.Pending)
	})

	t.Run("confirm installs the authoritative row", func(t *testing.T) {
		updated := m
		updated.Role = domain.RoleTeamLead
		got := reduce(s, opConfirmed{memberID: m.ID, member: &updated})
		assert.Equal(t, updated, got.Members[0])
		assert.Empty(t, got.Pending)
	})
}

func TestReduce_FetchReappliesPending(t *testing.T) {
	kept := member(domain.RoleViewer)
	removed := member(domain.RoleViewer)
	promoted := member(domain.RoleViewer)
	added := member(domain.RoleViewer)
	added.Pending = true

	s := workspaceState{
		Members: []domain.Member{kept, promoted, added},
		Pending: []OptimisticUpdate{
			{MemberID: added.ID, Kind: OpAdd, Record: added},
			{MemberID: removed.ID, Kind: OpRemove, Record: removed, Index: 1},
			{MemberID: promoted.ID, Kind: OpUpdate, Record: promoted, NewRole: domain.RoleTeamLead},
		},
	}

	// The authoritative list knows nothing of the in-flight operations.
	authoritative := []domain.Member{kept, removed, promoted}
	got := reduce(s, fetchSucceeded{members: authoritative})

	assert.Equal(t, []uuid.UUID{kept.ID, promoted.ID, added.ID}, ids(got.Members))
	assert.Equal(t, domain.RoleTeamLead, got.Members[1].Role)
	assert.Len(t, got.Pending, 3, "pending records survive the replace")
}

func TestReduce_EventIngestion(t *testing.T) {
	wsID := uuid.New()
	existing := member(domain.RoleViewer)
	s := workspaceState{Members: []domain.Member{existing}}

	t.Run("added", func(t *testing.T) {
		incoming := member(domain.RoleViewer)
		got := reduce(s, eventIngested{event: domain.MemberEvent{
			Type: domain.EventMemberAdded, WorkspaceID: wsID, MemberID: incoming.ID, Member: &incoming,
		}})
		assert.Equal(t, []uuid.UUID{existing.ID, incoming.ID}, ids(got.Members))
	})

	t.Run("added twice is applied once", func(t *testing.T) {
		got := reduce(s, eventIngested{event: domain.MemberEvent{
			Type: domain.EventMemberAdded, WorkspaceID: wsID, MemberID: existing.ID, Member: &existing,
		}})
		assert.Len(t, got.Members, 1)
	})

	t.Run("updated", func(t *testing.T) {
		updated := existing
		updated.Role = domain.RoleAdmin
		got := reduce(s, eventIngested{event: domain.MemberEvent{
			Type: domain.EventMemberUpdated, WorkspaceID: wsID, MemberID: existing.ID, Member: &updated,
		}})
		assert.Equal(t, domain.RoleAdmin, got.Members[0].Role)
	})

	t.Run("updated for unknown id is a no-op", func(t *testing.T) {
		ghost := member(domain.RoleAdmin)
		got := reduce(s, eventIngested{event: domain.MemberEvent{
			Type: domain.EventMemberUpdated, WorkspaceID: wsID, MemberID: ghost.ID, Member: &ghost,
		}})
		assert.Equal(t, s.Members, got.Members)
	})

	t.Run("removed", func(t *testing.T) {
		got := reduce(s, eventIngested{event: domain.MemberEvent{
			Type: domain.EventMemberRemoved, WorkspaceID: wsID, MemberID: existing.ID,
		}})
		assert.Empty(t, got.Members)
	})

	t.Run("local intent wins while an operation is in flight", func(t *testing.T) {
		pending := workspaceState{
			Members: s.Members,
			Pending: []OptimisticUpdate{{MemberID: existing.ID, Kind: OpUpdate, Record: existing, NewRole: domain.RoleAdmin}},
		}
		got := reduce(pending, eventIngested{event: domain.MemberEvent{
			Type: domain.EventMemberRemoved, WorkspaceID: wsID, MemberID: existing.ID,
		}})
		assert.Equal(t, pending.Members, got.Members, "event for a pending id is dropped")
	})
}

func TestInsertAt_Bounds(t *testing.T) {
	a, b := member(domain.RoleViewer), member(domain.RoleViewer)
	list := []domain.Member{a}

	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids(insertAt(copyMembers(list), b, -1)))
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, ids(insertAt(copyMembers(list), b, 5)))
}

func TestReduce_IgnoresSecondOptimisticActionForPendingID(t *testing.T) {
	m := member(domain.RoleViewer)
	s := reduce(workspaceState{}, fetchSucceeded{members: []domain.Member{m}})
	s = reduce(s, optimisticRoleChange{memberID: m.ID, role: domain.RoleTeamLead})
	require.Len(t, s.Pending, 1)

	// Another action for the same id while the first is unsettled must not
	// stack a second pending record or touch the list.
	again := reduce(s, optimisticRoleChange{memberID: m.ID, role: domain.RoleAdmin})
	assert.Equal(t, s, again)
	again = reduce(s, optimisticRemove{memberID: m.ID})
	assert.Equal(t, s, again)
}
