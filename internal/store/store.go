// Package store holds the per-workspace member cache. It is the single
// shared mutable resource of the sync layer: every mutation flows through
// the reducer, either via the optimistic lifecycle (add, remove, update
// role) or via realtime ingestion, which bypasses optimistic bookkeeping
// entirely.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/rs/zerolog"
)

// MemberStore caches workspace member lists with optimistic updates and
// rollback. Construct one per process and share it by reference; it is safe
// for concurrent use. The lock is never held across a backend call, so
// operations on different ids proceed independently.
type MemberStore struct {
	mu      sync.RWMutex
	byWS    map[uuid.UUID]workspaceState
	members backend.MemberAPI
	log     zerolog.Logger
}

// NewMemberStore creates a member store backed by the given member API.
func NewMemberStore(members backend.MemberAPI, log zerolog.Logger) *MemberStore {
	return &MemberStore{
		byWS:    make(map[uuid.UUID]workspaceState),
		members: members,
		log:     log.With().Str("component", "member_store").Logger(),
	}
}

func (s *MemberStore) dispatch(workspaceID uuid.UUID, a action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byWS[workspaceID] = reduce(s.byWS[workspaceID], a)
}

// Fetch replaces the cached list with the authoritative one from the
// backend. Unsettled optimistic entries survive the replace: the reducer
// re-applies them on top of the fetched list.
func (s *MemberStore) Fetch(ctx context.Context, workspaceID uuid.UUID) error {
	s.dispatch(workspaceID, fetchStarted{})

	members, err := s.members.ListMembers(ctx, workspaceID)
	if err != nil {
		s.dispatch(workspaceID, fetchFailed{err: err})
		return fmt.Errorf("fetch members: %w", err)
	}

	s.dispatch(workspaceID, fetchSucceeded{members: members})
	return nil
}

// Add optimistically appends a temporary member record and issues the
// backend insert. On success the temporary record is swapped for the
// authoritative row; on failure it is removed entirely.
func (s *MemberStore) Add(ctx context.Context, workspaceID uuid.UUID, user domain.User, role domain.Role) (domain.Member, error) {
	now := time.Now()
	temp := domain.Member{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        role,
		User:        user,
		CreatedAt:   now,
		UpdatedAt:   now,
		Pending:     true,
	}
	s.dispatch(workspaceID, optimisticAdd{member: temp})

	created, err := s.members.InsertMember(ctx, backend.InsertMember{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        role,
	})
	if err != nil {
		s.dispatch(workspaceID, opRolledBack{memberID: temp.ID, err: err})
		return domain.Member{}, fmt.Errorf("add member: %w", err)
	}

	s.dispatch(workspaceID, opConfirmed{memberID: temp.ID, member: &created})
	return created, nil
}

// Remove optimistically drops the member and issues the backend delete.
// On failure the captured record is restored at its original position.
func (s *MemberStore) Remove(ctx context.Context, workspaceID, memberID uuid.UUID) error {
	if err := s.dispatchChecked(workspaceID, memberID, optimisticRemove{memberID: memberID}); err != nil {
		return err
	}

	if err := s.members.DeleteMember(ctx, workspaceID, memberID); err != nil {
		s.dispatch(workspaceID, opRolledBack{memberID: memberID, err: err})
		return fmt.Errorf("remove member: %w", err)
	}

	s.dispatch(workspaceID, opConfirmed{memberID: memberID})
	return nil
}

// UpdateRole optimistically patches the member's role and issues the backend
// update. On failure the captured original fields are restored.
func (s *MemberStore) UpdateRole(ctx context.Context, workspaceID, memberID uuid.UUID, role domain.Role) error {
	if err := s.dispatchChecked(workspaceID, memberID, optimisticRoleChange{memberID: memberID, role: role}); err != nil {
		return err
	}

	updated, err := s.members.UpdateMemberRole(ctx, workspaceID, memberID, role)
	if err != nil {
		s.dispatch(workspaceID, opRolledBack{memberID: memberID, err: err})
		return fmt.Errorf("update member role: %w", err)
	}

	s.dispatch(workspaceID, opConfirmed{memberID: memberID, member: &updated})
	return nil
}

// dispatchChecked applies an optimistic action for ids present in the cache
// with no operation already in flight. The checks and the reduce share one
// critical section, so two racing operations on the same member id can never
// both apply: operations on a single id are serialized, and the loser gets
// ErrConflict while the prior settle is outstanding.
func (s *MemberStore) dispatchChecked(workspaceID, memberID uuid.UUID, a action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.byWS[workspaceID]
	if indexOf(state.Members, memberID) < 0 {
		return fmt.Errorf("member %s: %w", memberID, domain.ErrNotFound)
	}
	if pendingIndex(state.Pending, memberID) >= 0 {
		return fmt.Errorf("%w: operation already in flight for member %s", domain.ErrConflict, memberID)
	}
	s.byWS[workspaceID] = reduce(state, a)
	return nil
}

// Ingest applies an externally confirmed change notification directly to
// the cache, with no optimistic bookkeeping and no rollback machinery.
// Malformed events are logged and dropped, never surfaced to callers.
func (s *MemberStore) Ingest(workspaceID uuid.UUID, event domain.MemberEvent) {
	if !event.Valid() || event.WorkspaceID != workspaceID {
		s.log.Warn().
			Str("workspace_id", workspaceID.String()).
			Str("event_type", string(event.Type)).
			Msg("Dropping malformed realtime event")
		return
	}
	s.dispatch(workspaceID, eventIngested{event: event})
}

// Members returns a copy of the cached member list for the workspace.
func (s *MemberStore) Members(workspaceID uuid.UUID) []domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMembers(s.byWS[workspaceID].Members)
}

// Member looks up a single cached member by id.
func (s *MemberStore) Member(workspaceID, memberID uuid.UUID) (domain.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.byWS[workspaceID]
	if i := indexOf(state.Members, memberID); i >= 0 {
		return state.Members[i], true
	}
	return domain.Member{}, false
}

// Count returns the number of cached members for the workspace.
func (s *MemberStore) Count(workspaceID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byWS[workspaceID].Members)
}

// IsLoading reports whether a fetch is in progress for the workspace.
func (s *MemberStore) IsLoading(workspaceID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byWS[workspaceID].Loading
}

// Err returns the workspace's last recorded error, nil when healthy.
func (s *MemberStore) Err(workspaceID uuid.UUID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byWS[workspaceID].Err
}

// PendingUpdates returns a copy of the in-flight optimistic records for the
// workspace. UIs use this to disable controls for busy member ids.
func (s *MemberStore) PendingUpdates(workspaceID uuid.UUID) []OptimisticUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPending(s.byWS[workspaceID].Pending)
}

// HasPending reports whether an optimistic operation is in flight for the
// given member id.
func (s *MemberStore) HasPending(workspaceID, memberID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pendingIndex(s.byWS[workspaceID].Pending, memberID) >= 0
}
