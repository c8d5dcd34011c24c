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

func TestUserCRUD(t *testing.T) {
	s := newSuite(t)
	admin := s.user("admin@example.com", models.RoleAdmin)

	created, err := s.svc.CreateUser(s.ctx, &api.UserRequest{
		Name:     "Pak Joko",
		Email:    " Joko@Example.com ",
		Role:     string(models.RoleTeacher),
		Password: strp("rahasia123"),
	})
	require.NoError(t, err)
	assert.Equal(t, "joko@example.com", created.Email)
	assert.True(t, created.IsActive)

	stored, err := s.store.GetUser(s.ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, service.VerifyPassword(stored.PasswordHash, "rahasia123"))

	_, err = s.svc.CreateUser(s.ctx, &api.UserRequest{Name: "Dup", Email: "joko@example.com", Role: "parent", Password: strp("rahasia123")})
	assert.ErrorIs(t, err, response.ErrConflict)

	_, err = s.svc.CreateUser(s.ctx, &api.UserRequest{Name: "NoPass", Email: "np@example.com", Role: "parent"})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	// an empty password keeps the old hash
	updated, err := s.svc.UpdateUser(s.ctx, created.ID, &api.UserRequest{
		Name:     "Pak Joko S.",
		Email:    "joko@example.com",
		Role:     string(models.RoleTeacher),
		IsActive: boolp(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	stored, err = s.store.GetUser(s.ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, service.VerifyPassword(stored.PasswordHash, "rahasia123"))

	_, err = s.svc.UpdateUser(s.ctx, created.ID, &api.UserRequest{Name: "x", Email: s.parent.Email, Role: "teacher"})
	assert.ErrorIs(t, err, response.ErrConflict)

	list, err := s.svc.ListUsers(s.ctx, api.UserListQuery{Role: "teacher"})
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)
	assert.Equal(t, api.UserStats{Total: 4, Active: 3, Staff: 3, Parents: 1}, list.Stats)

	err = s.svc.DeleteUser(s.ctx, admin.ID, admin.ID)
	assert.ErrorIs(t, err, response.ErrBadRequest)

	require.NoError(t, s.svc.DeleteUser(s.ctx, admin.ID, created.ID))
	_, err = s.store.GetUser(s.ctx, created.ID)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestDeleteUserUnlinksStudentsAndKeepsTeachers(t *testing.T) {
	s := newSuite(t)
	admin := s.user("admin@example.com", models.RoleAdmin)
	s.createSchedule(s.adi.ID)

	err := s.svc.DeleteUser(s.ctx, admin.ID, s.teacher.ID)
	assert.ErrorIs(t, err, response.ErrConflict, "a teacher with schedules stays")

	require.NoError(t, s.svc.DeleteUser(s.ctx, admin.ID, s.parent.ID))
	st, err := s.store.GetStudent(s.ctx, s.adi.ID)
	require.NoError(t, err)
	assert.Nil(t, st.ParentID)
}

func TestAdminDashboard(t *testing.T) {
	s := newSuite(t)
	admin := s.user("admin@example.com", models.RoleAdmin)

	_, err := s.svc.CreateNews(s.ctx, admin.ID, &api.NewsRequest{Title: "Info", Body: "isi", Type: "news"})
	require.NoError(t, err)

	code := "BK-1"
	_, err = s.svc.CreateBook(s.ctx, &api.BookRequest{Code: &code, Title: "A", Category: strp("Fiksi"), Status: "available", TotalStock: 1})
	require.NoError(t, err)
	_, err = s.svc.CreateBook(s.ctx, &api.BookRequest{Title: "B", Category: strp("Fiksi"), Status: "available", TotalStock: 1})
	require.NoError(t, err)

	// seeded rows carry a zero created_at; add one inside the window
	_, err = s.svc.CreateStudent(s.ctx, &api.StudentRequest{Name: "Citra", Status: models.StudentActive})
	require.NoError(t, err)

	dash, err := s.svc.AdminDashboard(s.ctx)
	require.NoError(t, err)

	assert.Equal(t, api.CountPair{Total: 3, Active: 3}, dash.Stats.Users)
	assert.Equal(t, api.CountPair{Total: 3, Active: 3}, dash.Stats.Students)
	assert.Equal(t, api.NewsStats{Total: 1, Published: 1}, dash.Stats.News)
	assert.Equal(t, 2, dash.Stats.Books)
	assert.Equal(t, 1, dash.Stats.BookCategories)
	assert.Len(t, dash.RecentNews, 1)
	assert.Len(t, dash.RecentStudents, 3)
	assert.Equal(t, "Citra", dash.RecentStudents[0].Name)

	// the suite clock sits in March 2025 and the locale is English
	assert.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, dash.Growth.Labels)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 1}, dash.Growth.Students)

	s.now = s.now.AddDate(0, 7, 0)
	dash, err = s.svc.AdminDashboard(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, make([]int, 6), dash.Growth.Students)
}
