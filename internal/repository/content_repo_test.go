package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/acadex/acadex-api/internal/models"
)

func TestContentRepositoryListByCourseFiltersType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	faculty := createFaculty(t, db, "content@example.com")
	course := createCourse(t, db, "CS501")

	quiz := models.Content{Title: "Quiz 1", Type: models.ContentTypeQuiz, Questions: datatypes.JSON(`[]`), CourseID: course.ID, FacultyID: faculty.ID}
	exam := models.Content{Title: "Final", Type: models.ContentTypeExam, Questions: datatypes.JSON(`[]`), CourseID: course.ID, FacultyID: faculty.ID}
	require.NoError(t, repo.Create(context.Background(), &quiz))
	require.NoError(t, repo.Create(context.Background(), &exam))

	all, err := repo.ListByCourse(context.Background(), course.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	quizzes, err := repo.ListByCourse(context.Background(), course.ID, models.ContentTypeQuiz)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	require.Equal(t, "Quiz 1", quizzes[0].Title)

	count, err := repo.CountByCourse(context.Background(), course.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestContentRepositoryListByFaculty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	mine := createFaculty(t, db, "mine@example.com")
	theirs := createFaculty(t, db, "theirs@example.com")
	course := createCourse(t, db, "CS502")

	require.NoError(t, repo.Create(context.Background(), &models.Content{Title: "Mine", Type: models.ContentTypeQuiz, Questions: datatypes.JSON(`[]`), CourseID: course.ID, FacultyID: mine.ID}))
	require.NoError(t, repo.Create(context.Background(), &models.Content{Title: "Theirs", Type: models.ContentTypeQuiz, Questions: datatypes.JSON(`[]`), CourseID: course.ID, FacultyID: theirs.ID}))

	contents, err := repo.ListByFaculty(context.Background(), mine.ID)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Equal(t, "Mine", contents[0].Title)
}
