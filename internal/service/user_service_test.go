package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
)

func newUserService(env *testEnv) UserService {
	return NewUserService(env.users, env.contents, env.recorder, env.validate, testLogger())
}

func TestUserServiceListFiltersByRole(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	env.createUser(t, "admin@example.com", models.RoleAdmin)
	env.createUser(t, "faculty@example.com", models.RoleFaculty)

	faculty, err := svc.List(context.Background(), repository.UserFilter{Role: models.RoleFaculty})
	require.NoError(t, err)
	require.Len(t, faculty, 1)
	require.Equal(t, models.RoleFaculty, faculty[0].Role)

	_, err = svc.List(context.Background(), repository.UserFilter{Role: "SUPERUSER"})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserServiceSelfDemotionBlocked(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	admin := env.createUser(t, "self@example.com", models.RoleAdmin)

	facultyRole := models.RoleFaculty
	_, err := svc.Update(context.Background(), adminActor(admin.ID), admin.ID, dto.UserUpdateRequest{Role: &facultyRole})
	require.ErrorIs(t, err, ErrSelfDemotion)

	// Another admin may demote them.
	other := env.createUser(t, "other@example.com", models.RoleAdmin)
	updated, err := svc.Update(context.Background(), adminActor(other.ID), admin.ID, dto.UserUpdateRequest{Role: &facultyRole})
	require.NoError(t, err)
	require.Equal(t, models.RoleFaculty, updated.Role)
}

func TestUserServiceUpdateEmailCollision(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	env.createUser(t, "first@example.com", models.RoleFaculty)
	second := env.createUser(t, "second@example.com", models.RoleFaculty)

	taken := "first@example.com"
	_, err := svc.Update(context.Background(), adminActor(1), second.ID, dto.UserUpdateRequest{Email: &taken})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserServiceDeleteBlockedByContent(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	author := env.createUser(t, "author@example.com", models.RoleFaculty)
	course := env.createCourse(t, "CS601")

	content := models.Content{Title: "Quiz", Type: models.ContentTypeQuiz, Questions: datatypes.JSON(`[]`), CourseID: course.ID, FacultyID: author.ID}
	require.NoError(t, env.db.Create(&content).Error)

	err := svc.Delete(context.Background(), adminActor(1), author.ID)
	require.ErrorIs(t, err, ErrUserHasContent)

	require.NoError(t, env.db.Delete(&content).Error)
	require.NoError(t, svc.Delete(context.Background(), adminActor(1), author.ID))

	_, err = svc.Get(context.Background(), author.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivityServiceRecordAndList(t *testing.T) {
	env := newTestEnv(t)
	svc := NewActivityService(env.activity, testLogger())
	user := env.createUser(t, "trail@example.com", models.RoleFaculty)

	svc.Record(context.Background(), user.ID, "course_create", map[string]interface{}{
		"course_id": 1,
		"password":  "hunter2",
	})

	listed, err := svc.ListByUser(context.Background(), dto.ActivityListRequest{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, listed.Items, 1)
	require.Equal(t, "COURSE_CREATE", listed.Items[0].Action)
	require.Equal(t, "***", listed.Items[0].Metadata["password"])
	require.Equal(t, 1, listed.Pagination.TotalPages)
}

func TestActivityServiceRecordSkipsInvalidEntries(t *testing.T) {
	env := newTestEnv(t)
	svc := NewActivityService(env.activity, testLogger())

	svc.Record(context.Background(), 0, "ORPHANED", nil)
	svc.Record(context.Background(), 1, "   ", nil)

	var count int64
	require.NoError(t, env.db.Model(&models.ActivityLog{}).Count(&count).Error)
	require.Zero(t, count)
}
