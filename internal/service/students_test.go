package service_test

import (
	"testing"

	"tutor-portal/api"
	"tutor-portal/internal/models"
	"tutor-portal/internal/service"
	"tutor-portal/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStudentGeneratesCode(t *testing.T) {
	s := newSuite(t)

	// the suite seeds SW001 and SW002; a soft-deleted student still counts
	require.NoError(t, s.svc.DeleteStudent(s.ctx, s.budi.ID))

	resp, err := s.svc.CreateStudent(s.ctx, &api.StudentRequest{
		Name:   "Citra",
		Status: models.StudentActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "SW003", resp.Student.Code)
	assert.Nil(t, resp.ParentAccount)

	_, err = s.svc.CreateStudent(s.ctx, &api.StudentRequest{
		Code:   strp("SW003"),
		Name:   "Dewi",
		Status: models.StudentActive,
	})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestCreateStudentWithParentAccount(t *testing.T) {
	s := newSuite(t)

	resp, err := s.svc.CreateStudent(s.ctx, &api.StudentRequest{
		Name:                "Citra",
		Status:              models.StudentActive,
		CreateParentAccount: true,
		NewParentName:       strp("Ibu Sari"),
		NewParentEmail:      strp(" Sari@Example.com "),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ParentAccount)
	require.NotNil(t, resp.Student.ParentID)

	assert.Equal(t, "sari@example.com", resp.ParentAccount.Email)
	assert.Len(t, resp.ParentAccount.Password, 10)

	parent, err := s.store.GetUser(s.ctx, *resp.Student.ParentID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, parent.Role)
	assert.NotEqual(t, resp.ParentAccount.Password, parent.PasswordHash)
	assert.True(t, service.VerifyPassword(parent.PasswordHash, resp.ParentAccount.Password))

	// the email is taken now, so nothing is written the second time
	_, err = s.svc.CreateStudent(s.ctx, &api.StudentRequest{
		Name:                "Dewi",
		Status:              models.StudentActive,
		CreateParentAccount: true,
		NewParentName:       strp("Ibu Sari"),
		NewParentEmail:      strp("sari@example.com"),
	})
	assert.ErrorIs(t, err, response.ErrConflict)

	codes, err := s.store.ListStudentCodes(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SW001", "SW002", "SW003"}, codes)
}

func TestStudentParentMustBeParent(t *testing.T) {
	s := newSuite(t)

	_, err := s.svc.UpdateStudent(s.ctx, s.budi.ID, &api.StudentRequest{
		Name:     "Budi",
		Status:   models.StudentActive,
		ParentID: &s.teacher.ID,
	})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	resp, err := s.svc.UpdateStudent(s.ctx, s.budi.ID, &api.StudentRequest{
		Name:           "Budi",
		Status:         models.StudentInactive,
		ParentID:       &s.parent.ID,
		EducationLevel: strp("SMP"),
	})
	require.NoError(t, err)
	assert.Equal(t, &s.parent.ID, resp.Student.ParentID)
	assert.Equal(t, models.StudentInactive, resp.Student.Status)
}

func TestStudentDateOfBirth(t *testing.T) {
	s := newSuite(t)

	today := s.now.Format(api.DateLayout)
	_, err := s.svc.CreateStudent(s.ctx, &api.StudentRequest{
		Name:        "Citra",
		Status:      models.StudentActive,
		DateOfBirth: &today,
	})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	dob := s.now.AddDate(-10, 0, 0).Format(api.DateLayout)
	resp, err := s.svc.CreateStudent(s.ctx, &api.StudentRequest{
		Name:        "Citra",
		Status:      models.StudentActive,
		DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.Equal(t, &dob, resp.Student.DateOfBirth)
}

func TestListStudentsStats(t *testing.T) {
	s := newSuite(t)

	for _, req := range []api.StudentRequest{
		{Name: "Citra", Status: models.StudentActive, EducationLevel: strp("SD")},
		{Name: "Dewi", Status: models.StudentInactive, EducationLevel: strp("SMP")},
		{Name: "Eko", Status: models.StudentActive, EducationLevel: strp("SD")},
	} {
		_, err := s.svc.CreateStudent(s.ctx, &req)
		require.NoError(t, err)
	}

	list, err := s.svc.ListStudents(s.ctx, api.StudentListQuery{})
	require.NoError(t, err)
	assert.Equal(t, api.StudentStats{Total: 5, Active: 4, Inactive: 1, MostEducation: "SD"}, list.Stats)

	found, err := s.svc.ListStudents(s.ctx, api.StudentListQuery{Search: "smp"})
	require.NoError(t, err)
	require.Len(t, found.Students, 1)
	assert.Equal(t, "Dewi", found.Students[0].Name)
}

func TestDeleteAndRestoreStudent(t *testing.T) {
	s := newSuite(t)

	require.NoError(t, s.svc.DeleteStudent(s.ctx, s.budi.ID))

	list, err := s.svc.ListStudents(s.ctx, api.StudentListQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Students, 1)
	assert.Equal(t, 1, list.Stats.Total)

	trashed, err := s.svc.ListStudents(s.ctx, api.StudentListQuery{OnlyTrashed: true})
	require.NoError(t, err)
	assert.Len(t, trashed.Students, 1)

	restored, err := s.svc.RestoreStudent(s.ctx, s.budi.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)

	empty, err := s.svc.ListStudents(s.ctx, api.StudentListQuery{})
	require.NoError(t, err)
	assert.Equal(t, educationStats(2), empty.Stats)
}

func educationStats(total int) api.StudentStats {
	return api.StudentStats{Total: total, Active: total, MostEducation: "N/A"}
}
