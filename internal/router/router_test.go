package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pinnacleapp/internal/config"
	"github.com/pinnacleapp/internal/db"
	"github.com/pinnacleapp/internal/handler"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.User{}, &db.Review{}, &db.VisitorStats{}, &db.VisitorLog{}, &db.OnlineUser{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	cfg := config.AppConfig{
		SecretKey: "router-test-secret",
		TokenTTL:  2 * time.Hour,
		VideoDir:  t.TempDir(),
	}
	return SetupRouter(handler.NewAPI(gdb, cfg), []string{"*"})
}

func TestSetupRouterServesPing(t *testing.T) {
	r := setupRouterTest(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "pong" {
		t.Fatalf("unexpected ping body: %q", w.Body.String())
	}
}

func TestSetupRouterExposesMetrics(t *testing.T) {
	r := setupRouterTest(t)

	// 先打一个业务请求，确保指标有样本
	req := httptest.NewRequest(http.MethodGet, "/api/online-users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("online-users failed: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if body := w.Body.String(); body == "" {
		t.Fatal("expected non-empty metrics output")
	}
}

func TestSetupRouterMountsAPIRoutes(t *testing.T) {
	r := setupRouterTest(t)

	cases := []struct {
		method   string
		target   string
		notFound bool
	}{
		{method: http.MethodGet, target: "/api/online-users"},
		{method: http.MethodGet, target: "/api/nope", notFound: true},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if tc.notFound && w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", tc.target, w.Code)
		}
		if !tc.notFound && w.Code == http.StatusNotFound {
			t.Fatalf("%s: route not mounted", tc.target)
		}
	}
}
