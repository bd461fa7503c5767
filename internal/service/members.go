package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/loftable/teamsync/internal/permission"
	"github.com/loftable/teamsync/internal/store"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// Result is the discriminated outcome of a mutating member operation.
// Callers render Message inline instead of catching anything.
type Result struct {
	OK      bool             `json:"ok"`
	Kind    domain.ErrorKind `json:"kind,omitempty"`
	Message string           `json:"message,omitempty"`
	Err     error            `json:"-"`
}

func okResult() Result {
	return Result{OK: true}
}

func failed(err error) Result {
	return Result{
		OK:      false,
		Kind:    domain.ClassifyError(err),
		Message: domain.UserMessage(err),
		Err:     err,
	}
}

// MemberService wraps the member store with permission checks, validation,
// duplicate-email rejection and error classification. The permission gate
// always runs before any network call.
type MemberService struct {
	store      *store.MemberStore
	users      backend.UserAPI
	workspaces backend.WorkspaceAPI
	log        zerolog.Logger
}

// NewMemberService creates a new member service.
func NewMemberService(st *store.MemberStore, users backend.UserAPI, workspaces backend.WorkspaceAPI, log zerolog.Logger) *MemberService {
	return &MemberService{
		store:      st,
		users:      users,
		workspaces: workspaces,
		log:        log.With().Str("component", "member_service").Logger(),
	}
}

// ActorFor resolves the acting user's role and ownership within a workspace.
// The owner acts as admin even without an explicit membership row.
func (s *MemberService) ActorFor(ctx context.Context, userID, workspaceID uuid.UUID) (permission.Actor, error) {
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return permission.Actor{}, fmt.Errorf("resolve actor: %w", err)
	}

	actor := permission.Actor{UserID: userID, IsOwner: ws.OwnerID == userID}

	member, err := s.workspaces.GetMembership(ctx, workspaceID, userID)
	switch {
	case err == nil:
		actor.Role = member.Role
	case errors.Is(err, domain.ErrNotFound):
		// No explicit row. Non-owners end up with no role at all.
	default:
		return permission.Actor{}, fmt.Errorf("resolve actor: %w", err)
	}

	return actor, nil
}

// Refresh re-fetches the authoritative member list for a workspace.
func (s *MemberService) Refresh(ctx context.Context, workspaceID uuid.UUID) error {
	return s.store.Fetch(ctx, workspaceID)
}

// Members returns the current cached member list.
func (s *MemberService) Members(workspaceID uuid.UUID) []domain.Member {
	return s.store.Members(workspaceID)
}

// AddMember validates and permission-checks the input, then delegates the
// optimistic insert to the store. Rejections happen before any backend call.
func (s *MemberService) AddMember(ctx context.Context, actor permission.Actor, workspaceID uuid.UUID, input domain.MemberInput) Result {
	checker := permission.NewChecker(actor)
	if !checker.CanAddMembers() {
		return failed(fmt.Errorf("%w: adding members requires admin or team lead", domain.ErrPermissionDenied))
	}

	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(input); err != nil {
		return failed(fmt.Errorf("%w: %v", domain.ErrValidation, err))
	}

	if s.emailExists(workspaceID, input.Email) {
		return failed(fmt.Errorf("%w: a member with email %s already exists", domain.ErrConflict, input.Email))
	}

	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return failed(err)
	}
	if !checker.CanAssignRole(role) {
		return failed(fmt.Errorf("%w: cannot assign role %s", domain.ErrPermissionDenied, role))
	}

	user, err := s.users.LookupUserByEmail(ctx, input.Email)
	if err != nil {
		return failed(fmt.Errorf("lookup user %s: %w", input.Email, err))
	}

	if _, err := s.store.Add(ctx, workspaceID, user, role); err != nil {
		return failed(err)
	}
	return okResult()
}

// RemoveMember looks up the target in the cache, applies the fine-grained
// permission check against it and delegates to the store.
func (s *MemberService) RemoveMember(ctx context.Context, actor permission.Actor, workspaceID, memberID uuid.UUID) Result {
	target, ok := s.store.Member(workspaceID, memberID)
	if !ok {
		return failed(fmt.Errorf("member %s: %w", memberID, domain.ErrNotFound))
	}

	if !permission.NewChecker(actor).CanRemoveMember(target) {
		return failed(fmt.Errorf("%w: cannot remove this member", domain.ErrPermissionDenied))
	}

	if err := s.store.Remove(ctx, workspaceID, memberID); err != nil {
		return failed(err)
	}
	return okResult()
}

// UpdateMemberRole changes the target member's role after permission checks
// against both the target and the requested role.
func (s *MemberService) UpdateMemberRole(ctx context.Context, actor permission.Actor, workspaceID, memberID uuid.UUID, rawRole string) Result {
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return failed(err)
	}

	target, ok := s.store.Member(workspaceID, memberID)
	if !ok {
		return failed(fmt.Errorf("member %s: %w", memberID, domain.ErrNotFound))
	}

	checker := permission.NewChecker(actor)
	if !checker.CanChangeMemberRole(target) {
		return failed(fmt.Errorf("%w: cannot change this member's role", domain.ErrPermissionDenied))
	}
	if !checker.CanAssignRole(role) {
		return failed(fmt.Errorf("%w: cannot assign role %s", domain.ErrPermissionDenied, role))
	}

	if err := s.store.UpdateRole(ctx, workspaceID, memberID, role); err != nil {
		return failed(err)
	}
	return okResult()
}

// BulkOutcome summarizes an aggregate bulk result.
type BulkOutcome string

const (
	BulkAllSucceeded BulkOutcome = "all_succeeded"
	BulkPartial      BulkOutcome = "partial"
	BulkAllFailed    BulkOutcome = "all_failed"
)

// BulkResult aggregates independent per-member outcomes of a bulk operation.
type BulkResult struct {
	Outcome   BulkOutcome          `json:"outcome"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Failures  map[uuid.UUID]string `json:"failures,omitempty"`
}

// BulkRemove removes the given members concurrently and independently; one
// failure neither blocks nor rolls back the others.
func (s *MemberService) BulkRemove(ctx context.Context, actor permission.Actor, workspaceID uuid.UUID, memberIDs []uuid.UUID) (BulkResult, error) {
	return s.bulk(actor, memberIDs, func(id uuid.UUID) Result {
		return s.RemoveMember(ctx, actor, workspaceID, id)
	})
}

// BulkUpdateRole assigns the given role to the members concurrently and
// independently.
func (s *MemberService) BulkUpdateRole(ctx context.Context, actor permission.Actor, workspaceID uuid.UUID, memberIDs []uuid.UUID, rawRole string) (BulkResult, error) {
	return s.bulk(actor, memberIDs, func(id uuid.UUID) Result {
		return s.UpdateMemberRole(ctx, actor, workspaceID, id, rawRole)
	})
}

func (s *MemberService) bulk(actor permission.Actor, memberIDs []uuid.UUID, op func(uuid.UUID) Result) (BulkResult, error) {
	if !permission.NewChecker(actor).CanManageUsers() {
		return BulkResult{}, fmt.Errorf("%w: bulk member operations require admin", domain.ErrPermissionDenied)
	}
	if len(memberIDs) == 0 {
		return BulkResult{}, fmt.Errorf("%w: no members selected", domain.ErrValidation)
	}
	// Duplicate ids in one request would skew the aggregate: the failures
	// map keys by id, so each member is attempted exactly once.
	memberIDs = dedupeIDs(memberIDs)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures = make(map[uuid.UUID]string)
	)
	for _, id := range memberIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if res := op(id); !res.OK {
				mu.Lock()
				failures[id] = res.Message
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	result := BulkResult{
		Succeeded: len(memberIDs) - len(failures),
		Failed:    len(failures),
	}
	switch {
	case result.Failed == 0:
		result.Outcome = BulkAllSucceeded
	case result.Succeeded == 0:
		result.Outcome = BulkAllFailed
	default:
		result.Outcome = BulkPartial
	}
	if result.Failed > 0 {
		result.Failures = failures
	}
	return result, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *MemberService) emailExists(workspaceID uuid.UUID, email string) bool {
	for _, m := range s.store.Members(workspaceID) {
		if strings.EqualFold(m.User.Email, email) {
			return true
		}
	}
	return false
}
