package handlers

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/splitpot/backend/internal/config"
	"github.com/splitpot/backend/internal/middleware"
	"github.com/splitpot/backend/internal/models"
	"github.com/splitpot/backend/internal/services"
	"github.com/splitpot/backend/pkg/logger"
	"github.com/splitpot/backend/pkg/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.Group{},
		&models.Member{},
		&models.Expense{},
		&models.ExpenseSplit{},
		&models.PendingVerification{},
		&models.AuditLog{},
		&models.AuditExportCursor{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	auditService := services.NewAuditService(db, nil)
	ledgerService := services.NewLedgerService(db)

	vcfg := config.VerificationConfig{
		TTL:          15 * time.Minute,
		PollInterval: 3,
	}

	authHandler := NewAuthHandler(db, auditService, vcfg)
	verificationHandler := NewVerificationHandler(db, auditService)
	expenseHandler := NewExpenseHandler(db, auditService)
	groupHandler := NewGroupHandler(db, auditService, ledgerService)
	balanceHandler := NewBalanceHandler(db, ledgerService)
	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/groups", authHandler.CreateGroup)
	authRoutes.Post("/join", authHandler.JoinGroup)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	verificationRoutes := api.Group("/verifications")
	verificationRoutes.Get("/poll", verificationHandler.Poll)
	verificationRoutes.Post("/approve", authMiddleware.RequireAuth, verificationHandler.Approve)
	verificationRoutes.Get("/pending", authMiddleware.RequireAuth, verificationHandler.Pending)
	verificationRoutes.Delete("/", authMiddleware.RequireAuth, middleware.AdminOnly, verificationHandler.Clear)

	expenseRoutes := api.Group("/expenses", authMiddleware.RequireAuth)
	expenseRoutes.Get("/", expenseHandler.List)
	expenseRoutes.Post("/", expenseHandler.Create)
	expenseRoutes.Delete("/:id", middleware.AdminOnly, expenseHandler.Delete)
	expenseRoutes.Delete("/", middleware.AdminOnly, expenseHandler.Reset)

	groupRoutes := api.Group("/group", authMiddleware.RequireAuth)
	groupRoutes.Get("/", groupHandler.Get)
	groupRoutes.Patch("/", middleware.AdminOnly, groupHandler.Update)
	groupRoutes.Get("/members", groupHandler.ListMembers)
	groupRoutes.Delete("/members/:id", middleware.AdminOnly, groupHandler.RemoveMember)

	api.Get("/balances", authMiddleware.RequireAuth, balanceHandler.List)
	api.Get("/settlements", authMiddleware.RequireAuth, balanceHandler.Settlements)

	return &testEnv{app: app, db: db}
}

func createTestGroup(t *testing.T, db *gorm.DB, groupName, adminName string) (*models.Group, *models.Member, string) {
	t.Helper()

	code, err := utils.GenerateGroupCode()
	if err != nil {
		t.Fatalf("failed generating group code: %v", err)
	}

	group := &models.Group{
		Name:     groupName,
		Code:     code,
		Currency: "€",
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating test group: %v", err)
	}

	admin := &models.Member{
		GroupID: group.ID,
		Name:    adminName,
		IsAdmin: true,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed creating test admin: %v", err)
	}
	if err := db.Model(group).Update("created_by_id", admin.ID).Error; err != nil {
		t.Fatalf("failed setting group creator: %v", err)
	}

	token, err := utils.GenerateToken(admin)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return group, admin, token
}

func createTestMember(t *testing.T, db *gorm.DB, group *models.Group, name string) (*models.Member, string) {
	t.Helper()

	member := &models.Member{
		GroupID: group.ID,
		Name:    name,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed creating test member: %v", err)
	}

	token, err := utils.GenerateToken(member)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return member, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in response, got %+v", body)
	}
	return data
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
