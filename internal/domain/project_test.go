package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	project, err := NewProject(" Apollo ", "moon", &owner, owner)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", project.Name)
	assert.True(t, project.IsOwner(owner))
	assert.False(t, project.IsOwner(uuid.New()))
	require.NotNil(t, project.CreatedBy)
	assert.Equal(t, owner, *project.CreatedBy)

	unowned, err := NewProject("Gemini", "", nil, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, unowned.OwnerID)
	assert.Nil(t, unowned.CreatedBy)
	assert.False(t, unowned.IsOwner(owner))

	_, err = NewProject("   ", "", nil, owner)
	assert.ErrorIs(t, err, ErrEmptyProjectName)
}

func TestParseMemberRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    MemberRole
		wantErr bool
	}{
		{"", MemberRoleMember, false},
		{"admin", MemberRoleAdmin, false},
		{" QA ", MemberRoleQA, false},
		{"developer", MemberRoleDeveloper, false},
		{"reporter", MemberRoleReporter, false},
		{"viewer", MemberRoleViewer, false},
		{"owner", "", true},
	}
	for _, tc := range tests {
		got, err := ParseMemberRole(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidMemberRole, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestProjectLookups(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	module, err := NewProjectModule(uuid.New(), "Backend", "")
	require.NoError(t, err)

	project := &Project{
		ID:      module.ProjectID,
		Name:    "Apollo",
		Members: []ProjectMember{{UserID: userID, Role: MemberRoleQA}},
		Modules: []ProjectModule{*module},
	}

	member, ok := project.Member(userID)
	require.True(t, ok)
	assert.Equal(t, MemberRoleQA, member.Role)
	_, ok = project.Member(uuid.New())
	assert.False(t, ok)

	found, ok := project.Module(module.ID)
	require.True(t, ok)
	assert.Equal(t, "Backend", found.Name)
	_, ok = project.Module(uuid.New())
	assert.False(t, ok)
}

func TestNewProjectModule(t *testing.T) {
	t.Parallel()

	_, err := NewProjectModule(uuid.Nil, "Backend", "")
	assert.ErrorIs(t, err, ErrModuleWithoutProject)

	_, err = NewProjectModule(uuid.New(), "", "")
	assert.ErrorIs(t, err, ErrEmptyModuleName)
}
