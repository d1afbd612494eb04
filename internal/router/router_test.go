package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/config"
	"github.com/acadex/acadex-api/internal/handler"
	"github.com/acadex/acadex-api/internal/middleware"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
	"github.com/acadex/acadex-api/internal/router"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/pkg/ai"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
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

	cfg := config.Config{
		AppName:           "Acadex API",
		AppEnv:            "test",
		JWTSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		GenerationTimeout: time.Second,
	}

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	cloRepo := repository.NewCLORepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	contentRepo := repository.NewContentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, activityService, validate, cfg.JWTSecret, cfg.JWTExpiry, logger)
	userService := service.NewUserService(userRepo, contentRepo, activityService, validate, logger)
	courseService := service.NewCourseService(courseRepo, userRepo, assignmentRepo, contentRepo, activityService, validate, nil, time.Minute, logger)
	cloService := service.NewCLOService(cloRepo, courseRepo, activityService, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, userRepo, courseRepo, activityService, validate, logger)
	contentService := service.NewContentService(contentRepo, courseRepo, assignmentRepo, ai.NewTemplateGenerator(), cfg.GenerationTimeout, activityService, validate, logger)

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, activityService, courseService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, cloService, contentService, logger),
		CLOHandler:        handler.NewCLOHandler(cloService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		ContentHandler:    handler.NewContentHandler(contentService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret, userRepo),
		OptionalJWT:       middleware.JWTOptional(cfg.JWTSecret, userRepo),
	})

	return &testApp{app: app, db: db}
}

func (ta *testApp) seedUser(t *testing.T, email, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Email: email, Name: "Seeded User", PasswordHash: string(hash), Role: role}
	require.NoError(t, ta.db.Create(&user).Error)
	return user
}

func (ta *testApp) login(t *testing.T, email string) string {
	t.Helper()
	resp := ta.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decodeBody(t, resp, &response)
	require.NotEmpty(t, response.Data.Token)
	return response.Data.Token
}

func (ta *testApp) request(t *testing.T, method, path, token string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestHealthEndpointIsPublic(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, http.MethodGet, "/api/v1/courses", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = ta.request(t, http.MethodGet, "/api/v1/courses", "not-a-token", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCourseLifecycleScenario(t *testing.T) {
	ta := newTestApp(t)
	ta.seedUser(t, "admin@example.com", models.RoleAdmin)
	facultyF := ta.seedUser(t, "f@example.com", models.RoleFaculty)
	ta.seedUser(t, "g@example.com", models.RoleFaculty)

	adminToken := ta.login(t, "admin@example.com")
	fToken := ta.login(t, "f@example.com")
	gToken := ta.login(t, "g@example.com")

	// Faculty cannot create courses.
	resp := ta.request(t, http.MethodPost, "/api/v1/courses", fToken, map[string]interface{}{
		"name": "Nope", "code": "CS999",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Admin creates the course.
	resp = ta.request(t, http.MethodPost, "/api/v1/courses", adminToken, map[string]interface{}{
		"name": "Algorithms", "code": "CS301", "credit_hours": 3,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID   uint          `json:"id"`
			Code string        `json:"code"`
			CLOs []interface{} `json:"clos"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)
	require.Equal(t, "CS301", created.Data.Code)
	require.Empty(t, created.Data.CLOs)
	courseID := created.Data.ID

	// Duplicate course code conflicts.
	resp = ta.request(t, http.MethodPost, "/api/v1/courses", adminToken, map[string]interface{}{
		"name": "Algorithms Again", "code": "CS301",
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// First CLO is created, duplicate number conflicts.
	resp = ta.request(t, http.MethodPost, "/api/v1/clos", adminToken, map[string]interface{}{
		"course_id": courseID, "number": 1, "description": "Analyze complexity",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = ta.request(t, http.MethodPost, "/api/v1/clos", adminToken, map[string]interface{}{
		"course_id": courseID, "number": 1, "description": "Different text",
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Assign faculty F, duplicate assignment conflicts.
	resp = ta.request(t, http.MethodPost, "/api/v1/assignments", adminToken, map[string]interface{}{
		"faculty_id": facultyF.ID, "course_id": courseID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = ta.request(t, http.MethodPost, "/api/v1/assignments", adminToken, map[string]interface{}{
		"faculty_id": facultyF.ID, "course_id": courseID,
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// F authors a quiz for the course.
	quiz := map[string]interface{}{
		"title":     "Trees Quiz",
		"type":      "QUIZ",
		"course_id": courseID,
		"questions": []map[string]interface{}{{
			"question": "Which traversal visits the root first?",
			"options":  []string{"Preorder", "Inorder", "Postorder", "Level order"},
			"answer":   "Preorder",
		}},
	}
	resp = ta.request(t, http.MethodPost, "/api/v1/content", fToken, quiz)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var content struct {
		Data struct {
			ID        uint `json:"id"`
			FacultyID uint `json:"faculty_id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &content)
	require.Equal(t, facultyF.ID, content.Data.FacultyID)

	// G is not assigned to the course.
	resp = ta.request(t, http.MethodPost, "/api/v1/content", gToken, quiz)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// G cannot touch F's content either.
	resp = ta.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/content/%d", content.Data.ID), gToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Course deletion is blocked while content exists.
	resp = ta.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/courses/%d", courseID), adminToken, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = ta.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/content/%d", content.Data.ID), fToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ta.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/courses/%d", courseID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestContentGenerationEndpoint(t *testing.T) {
	ta := newTestApp(t)
	ta.seedUser(t, "gen.admin@example.com", models.RoleAdmin)
	token := ta.login(t, "gen.admin@example.com")

	resp := ta.request(t, http.MethodPost, "/api/v1/courses", token, map[string]interface{}{
		"name": "Databases", "code": "CS305",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)

	resp = ta.request(t, http.MethodPost, "/api/v1/content/generate/ai", token, map[string]interface{}{
		"type": "QUIZ", "course_id": created.Data.ID,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var generated struct {
		Data struct {
			Questions []map[string]interface{} `json:"questions"`
		} `json:"data"`
	}
	decodeBody(t, resp, &generated)
	require.NotEmpty(t, generated.Data.Questions)
}

func TestActivityEndpointAdminOrSelf(t *testing.T) {
	ta := newTestApp(t)
	ta.seedUser(t, "act.admin@example.com", models.RoleAdmin)
	faculty := ta.seedUser(t, "act.faculty@example.com", models.RoleFaculty)
	other := ta.seedUser(t, "act.other@example.com", models.RoleFaculty)

	adminToken := ta.login(t, "act.admin@example.com")
	facultyToken := ta.login(t, "act.faculty@example.com")

	// Self access is allowed.
	resp := ta.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/activity", faculty.ID), facultyToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Reading someone else's trail is not.
	resp = ta.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/activity", other.ID), facultyToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Admins may read anyone's.
	resp = ta.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/activity", other.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The user list itself stays admin-only.
	resp = ta.request(t, http.MethodGet, "/api/v1/users", facultyToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = ta.request(t, http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRegisterAdminRoleRequiresAdminToken(t *testing.T) {
	ta := newTestApp(t)
	ta.seedUser(t, "root@example.com", models.RoleAdmin)
	ta.seedUser(t, "plain@example.com", models.RoleFaculty)

	adminPayload := map[string]interface{}{
		"email":    "second.admin@example.com",
		"password": "password123",
		"name":     "Second Admin",
		"role":     models.RoleAdmin,
	}

	// Anonymous callers cannot create admins.
	resp := ta.request(t, http.MethodPost, "/api/v1/auth/register", "", adminPayload)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Neither can authenticated faculty.
	facultyToken := ta.login(t, "plain@example.com")
	resp = ta.request(t, http.MethodPost, "/api/v1/auth/register", facultyToken, adminPayload)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// An admin bearer token on the same route succeeds.
	adminToken := ta.login(t, "root@example.com")
	resp = ta.request(t, http.MethodPost, "/api/v1/auth/register", adminToken, adminPayload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			User struct {
				Role string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)
	require.Equal(t, models.RoleAdmin, created.Data.User.Role)

	// Anonymous self-registration still works and defaults to FACULTY.
	resp = ta.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    "newcomer@example.com",
		"password": "password123",
		"name":     "Newcomer",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &created)
	require.Equal(t, models.RoleFaculty, created.Data.User.Role)

	// A garbage token on the optional-auth route is still rejected.
	resp = ta.request(t, http.MethodPost, "/api/v1/auth/register", "not-a-token", adminPayload)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestActivityEndpointAcceptsLimitQuery(t *testing.T) {
	ta := newTestApp(t)
	user := ta.seedUser(t, "paged@example.com", models.RoleFaculty)
	token := ta.login(t, "paged@example.com")

	resp := ta.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/activity?page=2&limit=3", user.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data struct {
			Pagination struct {
				Page     int `json:"page"`
				PageSize int `json:"page_size"`
			} `json:"pagination"`
		} `json:"data"`
	}
	decodeBody(t, resp, &response)
	require.Equal(t, 2, response.Data.Pagination.Page)
	require.Equal(t, 3, response.Data.Pagination.PageSize)
}

func TestDeletedUserTokenIsRejected(t *testing.T) {
	ta := newTestApp(t)
	user := ta.seedUser(t, "gone@example.com", models.RoleFaculty)
	token := ta.login(t, "gone@example.com")

	require.NoError(t, ta.db.Delete(&models.User{}, user.ID).Error)

	resp := ta.request(t, http.MethodGet, "/api/v1/courses", token, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
