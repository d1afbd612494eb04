package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type recorderStub struct {
	actions []string
}

func (r *recorderStub) Record(_ context.Context, _ uint, action string, _ map[string]interface{}) {
	r.actions = append(r.actions, action)
}

type testEnv struct {
	db          *gorm.DB
	users       repository.UserRepository
	courses     repository.CourseRepository
	clos        repository.CLORepository
	assignments repository.AssignmentRepository
	contents    repository.ContentRepository
	activity    repository.ActivityLogRepository
	recorder    *recorderStub
	validate    *validator.Validate
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CLO{},
		&models.FacultyCourseAssignment{},
		&models.Content{},
		&models.ActivityLog{},
	))

	return &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		courses:     repository.NewCourseRepository(db),
		clos:        repository.NewCLORepository(db),
		assignments: repository.NewAssignmentRepository(db),
		contents:    repository.NewContentRepository(db),
		activity:    repository.NewActivityLogRepository(db),
		recorder:    &recorderStub{},
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (e *testEnv) createUser(t *testing.T, email, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Email: email, Name: "Test User", PasswordHash: string(hash), Role: role}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) createCourse(t *testing.T, code string) models.Course {
	t.Helper()
	course := models.Course{Name: "Course " + code, Code: code, CreditHours: 3}
	require.NoError(t, e.db.Create(&course).Error)
	return course
}

func (e *testEnv) assign(t *testing.T, facultyID, courseID uint) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.FacultyCourseAssignment{FacultyID: facultyID, CourseID: courseID}).Error)
}

func adminActor(id uint) Actor {
	return Actor{ID: id, Role: models.RoleAdmin}
}

func facultyActor(id uint) Actor {
	return Actor{ID: id, Role: models.RoleFaculty}
}
