package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
)

// SortMode selects the ordering of a member projection.
type SortMode string

const (
	SortByRole    SortMode = "role"    // admin > team_lead > viewer, name ascending within a role
	SortByName    SortMode = "name"    // full name ascending
	SortByCreated SortMode = "created" // newest first
)

// RoleFilterAll disables role filtering in a MemberQuery.
const RoleFilterAll = "all"

// MemberQuery describes a derived view over the cached member list. The
// projection never mutates the cache.
type MemberQuery struct {
	Search string
	Role   string
	Sort   SortMode
}

// FilterMembers computes the filtered, sorted projection of a workspace's
// cached members for the given query.
func (s *MemberService) FilterMembers(workspaceID uuid.UUID, q MemberQuery) []domain.Member {
	return ProjectMembers(s.store.Members(workspaceID), q)
}

// ProjectMembers applies a MemberQuery to a member list. Pure; operates on
// its own copy of the input.
func ProjectMembers(members []domain.Member, q MemberQuery) []domain.Member {
	out := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if q.Role != "" && q.Role != RoleFilterAll && string(m.Role) != q.Role {
			continue
		}
		if !matchesSearch(m, q.Search) {
			continue
		}
		out = append(out, m)
	}
	sortMembers(out, q.Sort)
	return out
}

// matchesSearch matches the query as a case-insensitive substring of the
// member's full name, email or role.
func matchesSearch(m domain.Member, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.User.FullName()), query) ||
		strings.Contains(strings.ToLower(m.User.Email), query) ||
		strings.Contains(strings.ToLower(string(m.Role)), query)
}

func sortMembers(members []domain.Member, mode SortMode) {
	switch mode {
	case SortByName:
		sort.SliceStable(members, func(i, j int) bool {
			return displayName(members[i]) < displayName(members[j])
		})
	case SortByCreated:
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt.After(members[j].CreatedAt)
		})
	default: // SortByRole
		sort.SliceStable(members, func(i, j int) bool {
			ri, rj := members[i].Role.Rank(), members[j].Role.Rank()
			if ri != rj {
				return ri > rj
			}
			return displayName(members[i]) < displayName(members[j])
		})
	}
}

func displayName(m domain.Member) string {
	if name := m.User.FullName(); name != "" {
		return strings.ToLower(name)
	}
	return strings.ToLower(m.User.Email)
}

// Selection tracks the member ids chosen for a bulk action. It lives beside
// the cache, not inside it, and is not safe for concurrent use; each view
// owns its own selection.
type Selection struct {
	ids map[uuid.UUID]struct{}
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[uuid.UUID]struct{})}
}

// Toggle flips membership of the id in the selection.
func (s *Selection) Toggle(id uuid.UUID) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll replaces the selection with all ids of the given members,
// typically the currently filtered projection.
func (s *Selection) SelectAll(members []domain.Member) {
	s.ids = make(map[uuid.UUID]struct{}, len(members))
	for _, m := range members {
		s.ids[m.ID] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[uuid.UUID]struct{})
}

// Has reports whether the id is selected.
func (s *Selection) Has(id uuid.UUID) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in unspecified order.
func (s *Selection) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}
