package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	t.Run("accepts known roles", func(t *testing.T) {
		for _, raw := range []string{"admin", "team_lead", "viewer"} {
			role, err := ParseRole(raw)
			assert.NoError(t, err)
			assert.Equal(t, Role(raw), role)
			assert.True(t, role.Valid())
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		for _, raw := range []string{"", "owner", "Admin", "superuser", "team-lead"} {
			role, err := ParseRole(raw)
			assert.ErrorIs(t, err, ErrValidation, "role %q", raw)
			assert.Equal(t, RoleNone, role)
		}
	})
}

func TestRole_Rank(t *testing.T) {
	assert.Greater(t, RoleAdmin.Rank(), RoleTeamLead.Rank())
	assert.Greater(t, RoleTeamLead.Rank(), RoleViewer.Rank())
	assert.Greater(t, RoleViewer.Rank(), RoleNone.Rank())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"permission", ErrPermissionDenied, KindPermissionDenied},
		{"validation", ErrValidation, KindValidation},
		{"conflict", ErrConflict, KindConflict},
		{"not found", ErrNotFound, KindNotFound},
		{"unauthenticated", ErrUnauthenticated, KindUnauthenticated},
		{"unrecognized", assert.AnError, KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestUserMessage_NeverEmpty(t *testing.T) {
	for _, err := range []error{ErrPermissionDenied, ErrValidation, ErrConflict, ErrNotFound, ErrUnauthenticated, assert.AnError} {
		assert.NotEmpty(t, UserMessage(err))
	}
}
