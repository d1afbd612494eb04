package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acadex/acadex-api/internal/dto"
)

func newCLOService(env *testEnv) CLOService {
	return NewCLOService(env.clos, env.courses, env.recorder, env.validate, testLogger())
}

func TestCLOServiceCreateAndDuplicateNumber(t *testing.T) {
	env := newTestEnv(t)
	svc := newCLOService(env)
	course := env.createCourse(t, "CS701")

	created, err := svc.Create(context.Background(), adminActor(1), dto.CLOCreateRequest{
		CourseID:    course.ID,
		Number:      1,
		Description: "Analyze complexity",
	})
	require.NoError(t, err)
	require.Equal(t, 1, created.Number)
	require.Contains(t, env.recorder.actions, "CLO_CREATE")

	_, err = svc.Create(context.Background(), adminActor(1), dto.CLOCreateRequest{
		CourseID:    course.ID,
		Number:      1,
		Description: "Different text, same number",
	})
	require.ErrorIs(t, err, ErrCLONumberExists)

	_, err = svc.Create(context.Background(), adminActor(1), dto.CLOCreateRequest{
		CourseID:    9999,
		Number:      1,
		Description: "Orphan",
	})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCLOServiceUpdateNumberCollision(t *testing.T) {
	env := newTestEnv(t)
	svc := newCLOService(env)
	course := env.createCourse(t, "CS702")

	first, err := svc.Create(context.Background(), adminActor(1), dto.CLOCreateRequest{CourseID: course.ID, Number: 1, Description: "First outcome"})
	require.NoError(t, err)
	require.Equal(t, 1, first.Number)
	second, err := svc.Create(context.Background(), adminActor(1), dto.CLOCreateRequest{CourseID: course.ID, Number: 2, Description: "Second outcome"})
	require.NoError(t, err)

	one := 1
	_, err = svc.Update(context.Background(), adminActor(1), second.ID, dto.CLOUpdateRequest{Number: &one})
	require.ErrorIs(t, err, ErrCLONumberExists)

	three := 3
	updated, err := svc.Update(context.Background(), adminActor(1), second.ID, dto.CLOUpdateRequest{Number: &three})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Number)
}

func TestCLOServiceDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := newCLOService(env)
	course := env.createCourse(t, "CS703")

	created, err := svc.Create(context.Background(), adminActor(1), dto.CLOCreateRequest{CourseID: course.ID, Number: 1, Description: "Disposable"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), adminActor(1), created.ID))

	err = svc.Delete(context.Background(), adminActor(1), created.ID)
	require.ErrorIs(t, err, ErrCLONotFound)
}
