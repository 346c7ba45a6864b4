package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"investclub/internal/config"
	"investclub/internal/handlers"
	"investclub/internal/logger"
	"investclub/internal/middleware"
	"investclub/internal/models"
	"investclub/internal/services"
	"investclub/internal/validator"
)

// opsAPIKey guards the external accrual trigger in tests.
const opsAPIKey = "test-ops-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Plan{},
		&models.Investment{},
		&models.Transaction{},
		&models.Referral{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	rates := config.CommissionRates{Level1: 15, Level2: 8, Level3: 5}

	// Services
	userService := services.NewUserService(db)
	referralService := services.NewReferralService(db, rates)
	accrualService := services.NewAccrualService(db, referralService)
	planService := services.NewPlanService(db)
	investmentService := services.NewInvestmentService(db, planService)
	transactionService := services.NewTransactionService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, referralService, auditService)
	planHandler := handlers.NewPlanHandler(planService, auditService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, auditService)
	walletHandler := handlers.NewWalletHandler(transactionService, auditService)
	referralHandler := handlers.NewReferralHandler(referralService)
	adminHandler := handlers.NewAdminHandler(accrualService, userService, transactionService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	v1.GET("/plans", planHandler.ListActivePlans)

	ops := v1.Group("/ops")
	ops.Use(middleware.OpsAuthMiddleware(opsAPIKey))
	ops.POST("/accrual/run", adminHandler.RunAccrualOps)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/referrals", referralHandler.GetOverview)

	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.Invest)
	investments.GET("", investmentHandler.ListInvestments)

	wallet := protected.Group("/wallet")
	wallet.POST("/deposits", walletHandler.RequestDeposit)
	wallet.POST("/withdrawals", walletHandler.RequestWithdrawal)
	wallet.GET("/transactions", walletHandler.ListTransactions)

	admin := protected.Group("/admin")
	admin.Use(middleware.SuperadminMiddleware())
	admin.POST("/accrual/run", adminHandler.RunAccrual)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/transactions", adminHandler.ListTransactions)
	admin.POST("/transactions/:id/review", adminHandler.ReviewTransaction)
	admin.POST("/plans", planHandler.CreatePlan)
	admin.GET("/plans", planHandler.ListPlans)
	admin.PUT("/plans/:id", planHandler.UpdatePlan)
	admin.DELETE("/plans/:id", planHandler.DeletePlan)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// opsRequest makes a request carrying the ops X-API-Key header.
func (app *testApp) opsRequest(method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and the user object.
func (app *testApp) registerUser(t *testing.T, email, referralCode string) (token string, user map[string]interface{}) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":"password123"`, email)
	if referralCode != "" {
		body += fmt.Sprintf(`,"referral_code":%q`, referralCode)
	}
	body += "}"
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["user"].(map[string]interface{})
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string)
}

// registerSuperadmin registers a user, promotes it, and logs in again so the
// token carries the superadmin role claim.
func (app *testApp) registerSuperadmin(t *testing.T, email string) string {
	t.Helper()
	_, user := app.registerUser(t, email, "")
	if err := app.DB.Model(&models.User{}).Where("id = ?", user["id"]).
		Update("role", models.RoleSuperadmin).Error; err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}
	return app.loginUser(t, email, "password123")
}

// fundUser credits the user's available balance directly.
func (app *testApp) fundUser(t *testing.T, userID string, amount int64) {
	t.Helper()
	if err := app.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("available_balance", gorm.Expr("available_balance + ?", amount)).Error; err != nil {
		t.Fatalf("failed to fund user: %v", err)
	}
}

// createPlan inserts a plan directly and returns its ID.
func (app *testApp) createPlan(t *testing.T, invest, daily int64, days int) string {
	t.Helper()
	plan := &models.Plan{
		Name:     fmt.Sprintf("Plan %d", dbCounter.Add(1)),
		Invest:   invest,
		Daily:    daily,
		Total:    daily * int64(days),
		Days:     days,
		IsActive: true,
	}
	if err := app.DB.Create(plan).Error; err != nil {
		t.Fatalf("failed to create plan: %v", err)
	}
	return plan.ID
}

// balance reads a user's available balance from the database.
func (app *testApp) balance(t *testing.T, userID string) int64 {
	t.Helper()
	var user models.User
	if err := app.DB.First(&user, "id = ?", userID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	return user.AvailableBalance
}
