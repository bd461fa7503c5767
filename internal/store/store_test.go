package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMemberAPI mocks the backend.MemberAPI interface
type MockMemberAPI struct {
	mock.Mock
}

func (m *MockMemberAPI) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.Member, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockMemberAPI) InsertMember(ctx context.Context, in backend.InsertMember) (domain.Member, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberAPI) UpdateMemberRole(ctx context.Context, workspaceID, memberID uuid.UUID, role domain.Role) (domain.Member, error) {
	args := m.Called(ctx, workspaceID, memberID, role)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberAPI) DeleteMember(ctx context.Context, workspaceID, memberID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, memberID)
	return args.Error(0)
}

func newTestStore(t *testing.T) (*MemberStore, *MockMemberAPI) {
	t.Helper()
	api := new(MockMemberAPI)
	return NewMemberStore(api, zerolog.Nop()), api
}

func seedStore(t *testing.T, s *MemberStore, api *MockMemberAPI, workspaceID uuid.UUID, members ...domain.Member) {
	t.Helper()
	api.On("ListMembers", mock.Anything, workspaceID).Return(members, nil).Once()
	require.NoError(t, s.Fetch(context.Background(), workspaceID))
}

func TestMemberStore_Fetch(t *testing.T) {
	wsID := uuid.New()
	a, b := member(domain.RoleAdmin), member(domain.RoleViewer)

	t.Run("success", func(t *testing.T) {
		s, api := newTestStore(t)
		api.On("ListMembers", mock.Anything, wsID).Return([]domain.Member{a, b}, nil)

		require.NoError(t, s.Fetch(context.Background(), wsID))
		assert.Equal(t, []domain.Member{a, b}, s.Members(wsID))
		assert.False(t, s.IsLoading(wsID))
		assert.NoError(t, s.Err(wsID))
		assert.Equal(t, 2, s.Count(wsID))
	})

	t.Run("failure records the error and keeps the old list", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, a)

		api.On("ListMembers", mock.Anything, wsID).Return(nil, assert.AnError).Once()
		err := s.Fetch(context.Background(), wsID)
		assert.ErrorIs(t, err, assert.AnError)
		assert.ErrorIs(t, s.Err(wsID), assert.AnError)
		assert.Equal(t, []domain.Member{a}, s.Members(wsID))
	})
}

func TestMemberStore_Add(t *testing.T) {
	wsID := uuid.New()
	user := domain.User{ID: uuid.New(), Email: "new@example.com"}

	t.Run("success swaps the temp record for the authoritative row", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID)

		created := domain.Member{
			ID:          uuid.New(),
			WorkspaceID: wsID,
			UserID:      user.ID,
			Role:        domain.RoleViewer,
			User:        user,
		}
		api.On("InsertMember", mock.Anything, backend.InsertMember{
			WorkspaceID: wsID, UserID: user.ID, Role: domain.RoleViewer,
		}).Return(created, nil)

		got, err := s.Add(context.Background(), wsID, user, domain.RoleViewer)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		members := s.Members(wsID)
		require.Len(t, members, 1)
		assert.Equal(t, created.ID, members[0].ID)
		assert.False(t, members[0].Pending)
		assert.Empty(t, s.PendingUpdates(wsID))
	})

	t.Run("failure rolls the temp record back out", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID)

		api.On("InsertMember", mock.Anything, mock.Anything).Return(domain.Member{}, assert.AnError)

		_, err := s.Add(context.Background(), wsID, user, domain.RoleViewer)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, s.Members(wsID))
		assert.Empty(t, s.PendingUpdates(wsID))
		assert.ErrorIs(t, s.Err(wsID), assert.AnError)
	})
}

func TestMemberStore_Remove(t *testing.T) {
	wsID := uuid.New()
	a, b, c := member(domain.RoleAdmin), member(domain.RoleTeamLead), member(domain.RoleViewer)

	t.Run("success", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, a, b, c)

		api.On("DeleteMember", mock.Anything, wsID, b.ID).Return(nil)
		require.NoError(t, s.Remove(context.Background(), wsID, b.ID))
		assert.Equal(t, []uuid.UUID{a.ID, c.ID}, ids(s.Members(wsID)))
	})

	t.Run("failure restores the member at its original position", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, a, b, c)

		api.On("DeleteMember", mock.Anything, wsID, b.ID).Return(assert.AnError)
		err := s.Remove(context.Background(), wsID, b.ID)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, ids(s.Members(wsID)))
	})

	t.Run("unknown member id", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, a)

		err := s.Remove(context.Background(), wsID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		api.AssertNotCalled(t, "DeleteMember", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMemberStore_UpdateRole(t *testing.T) {
	wsID := uuid.New()
	m := member(domain.RoleViewer)

	t.Run("success", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, m)

		updated := m
		updated.Role = domain.RoleTeamLead
		api.On("UpdateMemberRole", mock.Anything, wsID, m.ID, domain.RoleTeamLead).Return(updated, nil)

		require.NoError(t, s.UpdateRole(context.Background(), wsID, m.ID, domain.RoleTeamLead))
		got, ok := s.Member(wsID, m.ID)
		require.True(t, ok)
		assert.Equal(t, domain.RoleTeamLead, got.Role)
	})

	t.Run("failure restores the original role", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, m)

		api.On("UpdateMemberRole", mock.Anything, wsID, m.ID, domain.RoleTeamLead).
			Return(domain.Member{}, assert.AnError)

		err := s.UpdateRole(context.Background(), wsID, m.ID, domain.RoleTeamLead)
		assert.ErrorIs(t, err, assert.AnError)
		got, ok := s.Member(wsID, m.ID)
		require.True(t, ok)
		assert.Equal(t, domain.RoleViewer, got.Role)
	})
}

func TestMemberStore_SerializesOperationsPerMember(t *testing.T) {
	wsID := uuid.New()
	m := member(domain.RoleViewer)
	s, api := newTestStore(t)
	seedStore(t, s, api, wsID, m)

	release := make(chan struct{})
	started := make(chan struct{})
	api.On("DeleteMember", mock.Anything, wsID, m.ID).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil)

	done := make(chan error, 1)
	go func() {
		done <- s.Remove(context.Background(), wsID, m.ID)
	}()
	<-started

	// A second operation on the same id is rejected while the first is in
	// flight.
	assert.True(t, s.HasPending(wsID, m.ID))
	err := s.UpdateRole(context.Background(), wsID, m.ID, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrConflict)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.HasPending(wsID, m.ID))
	api.AssertNotCalled(t, "UpdateMemberRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMemberStore_RacedSameMemberOperations(t *testing.T) {
	wsID := uuid.New()

	// Fire a failing remove and a succeeding role change for one id at the
	// same instant, repeatedly. Whichever interleaving the scheduler picks,
	// the failed remove must never lose the member and no pending record may
	// outlive its settle.
	for i := 0; i < 200; i++ {
		m := member(domain.RoleViewer)
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, m)

		promoted := m
		promoted.Role = domain.RoleAdmin
		api.On("DeleteMember", mock.Anything, wsID, m.ID).Return(assert.AnError)
		api.On("UpdateMemberRole", mock.Anything, wsID, m.ID, domain.RoleAdmin).Return(promoted, nil)

		start := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_ = s.Remove(context.Background(), wsID, m.ID)
		}()
		go func() {
			defer wg.Done()
			<-start
			_ = s.UpdateRole(context.Background(), wsID, m.ID, domain.RoleAdmin)
		}()
		close(start)
		wg.Wait()

		_, ok := s.Member(wsID, m.ID)
		require.True(t, ok, "member lost after a failed remove raced a role change")
		require.Empty(t, s.PendingUpdates(wsID))
	}
}

func TestMemberStore_FetchDuringPendingAdd(t *testing.T) {
	wsID := uuid.New()
	existing := member(domain.RoleAdmin)
	user := domain.User{ID: uuid.New(), Email: "late@example.com"}
	s, api := newTestStore(t)
	seedStore(t, s, api, wsID, existing)

	insertStarted := make(chan struct{})
	insertRelease := make(chan struct{})
	created := domain.Member{ID: uuid.New(), WorkspaceID: wsID, UserID: user.ID, Role: domain.RoleViewer, User: user}
	api.On("InsertMember", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(insertStarted)
			<-insertRelease
		}).
		Return(created, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.Add(context.Background(), wsID, user, domain.RoleViewer)
		assert.NoError(t, err)
	}()
	<-insertStarted

	// A refetch lands while the insert is still in flight; the authoritative
	// list does not contain the new member yet, but the optimistic record
	// survives the replace.
	api.On("ListMembers", mock.Anything, wsID).Return([]domain.Member{existing}, nil).Once()
	require.NoError(t, s.Fetch(context.Background(), wsID))
	assert.Equal(t, 2, s.Count(wsID))

	close(insertRelease)
	<-done

	members := s.Members(wsID)
	require.Len(t, members, 2)
	assert.Equal(t, created.ID, members[1].ID)
	assert.Empty(t, s.PendingUpdates(wsID))
}

func TestMemberStore_Ingest(t *testing.T) {
	wsID := uuid.New()
	existing := member(domain.RoleViewer)

	t.Run("applies valid events", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, existing)

		incoming := member(domain.RoleViewer)
		incoming.WorkspaceID = wsID
		s.Ingest(wsID, domain.MemberEvent{
			Type: domain.EventMemberAdded, WorkspaceID: wsID, MemberID: incoming.ID, Member: &incoming,
		})
		assert.Equal(t, 2, s.Count(wsID))
	})

	t.Run("drops malformed events", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, existing)

		s.Ingest(wsID, domain.MemberEvent{Type: domain.EventMemberRemoved, WorkspaceID: wsID})
		assert.Equal(t, 1, s.Count(wsID))
	})

	t.Run("drops events for a different workspace", func(t *testing.T) {
		s, api := newTestStore(t)
		seedStore(t, s, api, wsID, existing)

		s.Ingest(wsID, domain.MemberEvent{
			Type: domain.EventMemberRemoved, WorkspaceID: uuid.New(), MemberID: existing.ID,
		})
		assert.Equal(t, 1, s.Count(wsID))
	})
}

func TestMemberStore_ReadersCopy(t *testing.T) {
	wsID := uuid.New()
	m := member(domain.RoleViewer)
	s, api := newTestStore(t)
	seedStore(t, s, api, wsID, m)

	list := s.Members(wsID)
	list[0].Role = domain.RoleAdmin

	got, ok := s.Member(wsID, m.ID)
	require.True(t, ok)
	assert.Equal(t, domain.RoleViewer, got.Role, "mutating a returned slice must not touch the cache")

	// Readers on an unknown workspace return zero values, never panic.
	assert.Empty(t, s.Members(uuid.New()))
	assert.Equal(t, 0, s.Count(uuid.New()))
	assert.False(t, s.IsLoading(uuid.New()))
}
