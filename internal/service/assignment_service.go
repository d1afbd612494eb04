package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
)

// Assignment error sentinels.
var (
	ErrAssignmentNotFound = errors.New("faculty-course assignment not found")
	ErrAlreadyAssigned    = errors.New("faculty is already assigned to this course")
	ErrCoursesMissing     = errors.New("one or more courses not found")
	ErrFacultyMissing     = errors.New("one or more faculty not found or not faculty members")
)

// AssignmentService exposes faculty-course assignment use cases.
type AssignmentService interface {
	List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, error)
	Assign(ctx context.Context, actor Actor, payload dto.AssignRequest) (dto.AssignmentResponse, error)
	Remove(ctx context.Context, actor Actor, payload dto.AssignRequest) error
	BulkAssignCoursesToFaculty(ctx context.Context, actor Actor, payload dto.BulkAssignCoursesRequest) (dto.BulkAssignResponse, error)
	BulkAssignFacultyToCourse(ctx context.Context, actor Actor, payload dto.BulkAssignFacultyRequest) (dto.BulkAssignResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	courses     repository.CourseRepository
	recorder    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	users repository.UserRepository,
	courses repository.CourseRepository,
	recorder ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		users:       users,
		courses:     courses,
		recorder:    recorder,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Assign(ctx context.Context, actor Actor, payload dto.AssignRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	faculty, err := s.users.GetByID(ctx, payload.FacultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrFacultyNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if !faculty.IsFaculty() {
		return dto.AssignmentResponse{}, ErrNotFacultyRole
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.assignments.GetByPair(ctx, payload.FacultyID, payload.CourseID); err == nil {
		return dto.AssignmentResponse{}, ErrAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.FacultyCourseAssignment{
		FacultyID: payload.FacultyID,
		CourseID:  payload.CourseID,
	}
	if err := s.assignments.Create(ctx, &assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AssignmentResponse{}, ErrAlreadyAssigned
		}
		return dto.AssignmentResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "ASSIGN_FACULTY_COURSE", map[string]interface{}{
		"assignment_id": assignment.ID,
		"faculty_id":    payload.FacultyID,
		"faculty_name":  faculty.Name,
		"course_id":     payload.CourseID,
		"course_code":   course.Code,
	})
	s.logger.Info().
		Uint("faculty_id", payload.FacultyID).
		Uint("course_id", payload.CourseID).
		Msg("faculty assigned to course")

	assignment.Faculty = &faculty
	assignment.Course = &course
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Remove(ctx context.Context, actor Actor, payload dto.AssignRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.assignments.DeleteByPair(ctx, payload.FacultyID, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.recorder.Record(ctx, actor.ID, "REMOVE_FACULTY_COURSE", map[string]interface{}{
		"faculty_id": payload.FacultyID,
		"course_id":  payload.CourseID,
	})
	s.logger.Info().
		Uint("faculty_id", payload.FacultyID).
		Uint("course_id", payload.CourseID).
		Msg("faculty removed from course")

	return nil
}

// BulkAssignCoursesToFaculty creates only the missing pairs. Pairs that
// already exist are reported, not treated as errors, so the operation is
// idempotent. Each created pair is durable on its own; the batch is not one
// transaction.
func (s *assignmentService) BulkAssignCoursesToFaculty(ctx context.Context, actor Actor, payload dto.BulkAssignCoursesRequest) (dto.BulkAssignResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkAssignResponse{}, err
	}

	faculty, err := s.users.GetByID(ctx, payload.FacultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BulkAssignResponse{}, ErrFacultyNotFound
		}
		return dto.BulkAssignResponse{}, err
	}
	if !faculty.IsFaculty() {
		return dto.BulkAssignResponse{}, ErrNotFacultyRole
	}

	missing := make([]uint, 0)
	for _, courseID := range payload.CourseIDs {
		if _, err := s.courses.GetByID(ctx, courseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				missing = append(missing, courseID)
				continue
			}
			return dto.BulkAssignResponse{}, err
		}
	}
	if len(missing) > 0 {
		return dto.BulkAssignResponse{}, fmt.Errorf("%w: %v", ErrCoursesMissing, missing)
	}

	existing, err := s.assignments.ListExistingCourseIDs(ctx, payload.FacultyID, payload.CourseIDs)
	if err != nil {
		return dto.BulkAssignResponse{}, err
	}

	response := dto.BulkAssignResponse{
		Created:            make([]dto.AssignmentResponse, 0),
		AlreadyAssignedIDs: existing,
	}

	existingSet := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}

	for _, courseID := range payload.CourseIDs {
		if _, skip := existingSet[courseID]; skip {
			continue
		}

		assignment := models.FacultyCourseAssignment{FacultyID: payload.FacultyID, CourseID: courseID}
		if err := s.assignments.Create(ctx, &assignment); err != nil {
			// A concurrent assign may have won the race; count it as skipped.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				response.AlreadyAssignedIDs = append(response.AlreadyAssignedIDs, courseID)
				continue
			}
			return dto.BulkAssignResponse{}, err
		}

		response.Created = append(response.Created, dto.NewAssignmentResponse(assignment))
	}

	response.CreatedCount = len(response.Created)
	response.SkippedCount = len(response.AlreadyAssignedIDs)

	s.recorder.Record(ctx, actor.ID, "BULK_ASSIGN_COURSES_TO_FACULTY", map[string]interface{}{
		"faculty_id":    payload.FacultyID,
		"created_count": response.CreatedCount,
		"skipped_count": response.SkippedCount,
	})

	return response, nil
}

// BulkAssignFacultyToCourse is the symmetric reconciliation: every target id
// must be an existing FACULTY-role user.
func (s *assignmentService) BulkAssignFacultyToCourse(ctx context.Context, actor Actor, payload dto.BulkAssignFacultyRequest) (dto.BulkAssignResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkAssignResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BulkAssignResponse{}, ErrCourseNotFound
		}
		return dto.BulkAssignResponse{}, err
	}

	faculty, err := s.users.ListByIDsAndRole(ctx, payload.FacultyIDs, models.RoleFaculty)
	if err != nil {
		return dto.BulkAssignResponse{}, err
	}
	if len(faculty) != len(uniqueIDs(payload.FacultyIDs)) {
		return dto.BulkAssignResponse{}, ErrFacultyMissing
	}

	existing, err := s.assignments.ListExistingFacultyIDs(ctx, payload.CourseID, payload.FacultyIDs)
	if err != nil {
		return dto.BulkAssignResponse{}, err
	}

	response := dto.BulkAssignResponse{
		Created:            make([]dto.AssignmentResponse, 0),
		AlreadyAssignedIDs: existing,
	}

	existingSet := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}

	for _, facultyID := range uniqueIDs(payload.FacultyIDs) {
		if _, skip := existingSet[facultyID]; skip {
			continue
		}

		assignment := models.FacultyCourseAssignment{FacultyID: facultyID, CourseID: payload.CourseID}
		if err := s.assignments.Create(ctx, &assignment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				response.AlreadyAssignedIDs = append(response.AlreadyAssignedIDs, facultyID)
				continue
			}
			return dto.BulkAssignResponse{}, err
		}

		response.Created = append(response.Created, dto.NewAssignmentResponse(assignment))
	}

	response.CreatedCount = len(response.Created)
	response.SkippedCount = len(response.AlreadyAssignedIDs)

	s.recorder.Record(ctx, actor.ID, "BULK_ASSIGN_FACULTY_TO_COURSE", map[string]interface{}{
		"course_id":     payload.CourseID,
		"course_code":   course.Code,
		"created_count": response.CreatedCount,
		"skipped_count": response.SkippedCount,
	})

	return response, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
