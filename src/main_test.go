package main

import (
	"encoding/json"
	"etix/src/db"
	"etix/src/middlewares"
	"etix/src/types"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqldb,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

type TestSuite struct {
	suite.Suite
	Mock   sqlmock.Sqlmock
	Router *gin.Engine
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	d, mock := NewMockDB()
	db.NewDB(d)
	s.Mock = mock

	router := setupRouter()
	authRoutes(router)
	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = accountHandlers(authorized)
	}
	s.Router = router
}

func (s *TestSuite) token(email string, userID uint) string {
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WithArgs(email, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(userID, email))

	body, _ := json.Marshal(types.AuthTokenRequestBody{Email: email})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code)
	return gjson.Get(w.Body.String(), "token").String()
}

func (s *TestSuite) TestPing() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *TestSuite) TestAuthRequired() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/balance", nil)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *TestSuite) TestAuthTokenUnknownEmail() {
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WithArgs("ghost@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	body, _ := json.Marshal(types.AuthTokenRequestBody{Email: "ghost@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *TestSuite) TestAccountBalance() {
	token := s.token("buyer@example.com", 3)

	// The auth middleware resolves the user, then the handler reads the
	// balance.
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WithArgs("buyer@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(3, "buyer@example.com"))
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","balance" FROM "users"`)).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}).AddRow(3, 2500))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/balance", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(2500), gjson.Get(w.Body.String(), "balance").Int())
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}

func TestMaintenanceMode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	router.GET("/ping", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrNotFound, http.StatusNotFound},
		{types.ErrIntentExpired, http.StatusNotFound},
		{types.ErrUnauthorized, http.StatusForbidden},
		{types.ErrInsufficientInventory, http.StatusConflict},
		{types.ErrInvalidState, http.StatusConflict},
		{types.ErrAlreadyUsed, http.StatusConflict},
		{types.ErrPaymentNotSuccessful, http.StatusPaymentRequired},
		{types.ErrTransientUpstream, http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(fmt.Errorf("wrapped: %w", tt.err)))
	}
}
