package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func createFaculty(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: "Faculty Member", PasswordHash: "x", Role: models.RoleFaculty}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestCourseRepositoryCreateBundlePersistsCLOsAndAssignment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	faculty := createFaculty(t, db, "bundle@example.com")

	course := models.Course{
		Name:        "Algorithms",
		Code:        "CS301",
		CreditHours: 3,
		CLOs: []models.CLO{
			{Number: 1, Description: "Analyze complexity"},
			{Number: 2, Description: "Design divide and conquer solutions"},
		},
	}

	assignment := &models.FacultyCourseAssignment{FacultyID: faculty.ID}
	require.NoError(t, repo.CreateBundle(context.Background(), &course, assignment))
	require.NotZero(t, course.ID)

	stored, err := repo.GetByID(context.Background(), course.ID)
	require.NoError(t, err)
	require.Len(t, stored.CLOs, 2)
	require.Equal(t, 1, stored.CLOs[0].Number)
	require.Len(t, stored.FacultyLinks, 1)
	require.Equal(t, faculty.ID, stored.FacultyLinks[0].FacultyID)
}

func TestCourseRepositoryCreateBundleRollsBackOnBadAssignment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	faculty := createFaculty(t, db, "rollback@example.com")

	existing := models.FacultyCourseAssignment{FacultyID: faculty.ID, CourseID: 999}
	require.NoError(t, db.Create(&existing).Error)

	course := models.Course{Name: "Databases", Code: "CS305", CreditHours: 3}
	// Force the assignment insert to collide so the whole bundle rolls back.
	course.ID = 999
	assignment := &models.FacultyCourseAssignment{FacultyID: faculty.ID}

	err := repo.CreateBundle(context.Background(), &course, assignment)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Course{}).Where("code = ?", "CS305").Count(&count).Error)
	require.Zero(t, count)
}

func TestCourseRepositoryDuplicateCodeTranslates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)

	first := models.Course{Name: "Networks", Code: "CS320", CreditHours: 3}
	require.NoError(t, repo.CreateBundle(context.Background(), &first, nil))

	duplicate := models.Course{Name: "Other", Code: "CS320", CreditHours: 3}
	err := repo.CreateBundle(context.Background(), &duplicate, nil)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCourseRepositoryDeleteCascadeRemovesChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	faculty := createFaculty(t, db, "cascade@example.com")

	course := models.Course{
		Name:        "Operating Systems",
		Code:        "CS330",
		CreditHours: 3,
		CLOs:        []models.CLO{{Number: 1, Description: "Explain scheduling"}},
	}
	require.NoError(t, repo.CreateBundle(context.Background(), &course, &models.FacultyCourseAssignment{FacultyID: faculty.ID}))

	require.NoError(t, repo.DeleteCascade(context.Background(), course.ID))

	var cloCount, linkCount int64
	require.NoError(t, db.Model(&models.CLO{}).Where("course_id = ?", course.ID).Count(&cloCount).Error)
	require.NoError(t, db.Model(&models.FacultyCourseAssignment{}).Where("course_id = ?", course.ID).Count(&linkCount).Error)
	require.Zero(t, cloCount)
	require.Zero(t, linkCount)

	_, err := repo.GetByID(context.Background(), course.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCourseRepositoryDeleteCascadeMissingCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)

	err := repo.DeleteCascade(context.Background(), 12345)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCourseRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)

	algorithms := models.Course{Name: "Algorithms", Code: "CS301", CreditHours: 3}
	networks := models.Course{Name: "Networks", Code: "CS320", CreditHours: 3}
	require.NoError(t, repo.CreateBundle(context.Background(), &algorithms, nil))
	require.NoError(t, repo.CreateBundle(context.Background(), &networks, nil))

	all, err := repo.List(context.Background(), CourseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	byCode, err := repo.List(context.Background(), CourseFilter{Code: "CS320"})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	require.Equal(t, "Networks", byCode[0].Name)

	byName, err := repo.List(context.Background(), CourseFilter{Name: "algo"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "CS301", byName[0].Code)
}

func TestCourseRepositoryListByFaculty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	faculty := createFaculty(t, db, "listby@example.com")
	other := createFaculty(t, db, "other@example.com")

	mine := models.Course{Name: "Compilers", Code: "CS340", CreditHours: 3}
	theirs := models.Course{Name: "Graphics", Code: "CS350", CreditHours: 3}
	require.NoError(t, repo.CreateBundle(context.Background(), &mine, &models.FacultyCourseAssignment{FacultyID: faculty.ID}))
	require.NoError(t, repo.CreateBundle(context.Background(), &theirs, &models.FacultyCourseAssignment{FacultyID: other.ID}))

	courses, err := repo.ListByFaculty(context.Background(), faculty.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "CS340", courses[0].Code)
}
