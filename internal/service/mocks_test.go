package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/stretchr/testify/mock"
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

// MockWorkspaceAPI mocks the backend.WorkspaceAPI interface
type MockWorkspaceAPI struct {
	mock.Mock
}

func (m *MockWorkspaceAPI) GetWorkspace(ctx context.Context, id uuid.UUID) (domain.Workspace, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceAPI) UpdateWorkspace(ctx context.Context, id uuid.UUID, update domain.WorkspaceUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockWorkspaceAPI) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkspaceAPI) GetMembership(ctx context.Context, workspaceID, userID uuid.UUID) (domain.Member, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.Get(0).(domain.Member), args.Error(1)
}

// MockUserAPI mocks the backend.UserAPI interface
type MockUserAPI struct {
	mock.Mock
}

func (m *MockUserAPI) LookupUserByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserAPI) SearchUsers(ctx context.Context, query string, limit int) ([]domain.User, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserAPI) ListRecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockDocumentAPI mocks the backend.DocumentAPI interface
type MockDocumentAPI struct {
	mock.Mock
}

func (m *MockDocumentAPI) ListDocuments(ctx context.Context, workspaceID uuid.UUID) ([]domain.Document, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentAPI) InsertDocument(ctx context.Context, doc domain.Document) (domain.Document, error) {
	args := m.Called(ctx, doc)
	return args.Get(0).(domain.Document), args.Error(1)
}

func (m *MockDocumentAPI) DeleteDocument(ctx context.Context, workspaceID, documentID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, documentID)
	return args.Error(0)
}
