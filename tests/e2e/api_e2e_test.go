package e2e

import (
	"bytes"
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
	"github.com/pinnacleapp/internal/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler http.Handler
	t       *testing.T
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	// 管理员通过启动引导创建，不经由注册接口
	if err := db.EnsureAdmin("root", "root-password"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	cfg := config.AppConfig{
		SecretKey: "e2e-secret",
		TokenTTL:  2 * time.Hour,
		VideoDir:  t.TempDir(),
	}

	return &e2eSuite{
		handler: router.SetupRouter(handler.NewAPI(gdb, cfg), []string{"*"}),
		t:       t,
	}
}

func (s *e2eSuite) request(method, target, token string, payload any) *httptest.ResponseRecorder {
	s.t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "e2e-agent")

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *e2eSuite) signIn(username, password string) string {
	s.t.Helper()

	w := s.request(http.MethodPost, "/api/signin", "", map[string]any{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusOK {
		s.t.Fatalf("signin %s failed: %d %s", username, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		s.t.Fatalf("decode signin response: %v", err)
	}
	if resp.Token == "" {
		s.t.Fatal("signin returned no token")
	}
	return resp.Token
}

func TestReviewModerationLifecycle(t *testing.T) {
	s := newE2ESuite(t)

	// 注册普通用户并登录
	if w := s.request(http.MethodPost, "/api/signup", "", map[string]any{
		"username": "visitor",
		"password": "visitor-pass",
	}); w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", w.Code, w.Body.String())
	}
	userToken := s.signIn("visitor", "visitor-pass")
	adminToken := s.signIn("root", "root-password")

	// 匿名提交评论，初始 pending
	w := s.request(http.MethodPost, "/api/reviews", "", map[string]any{
		"name":   "Happy Customer",
		"review": "The service exceeded expectations.",
		"rating": 5,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit review failed: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	// 访客与普通用户都看不到 pending 评论
	if w := s.request(http.MethodGet, "/api/reviews", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("guest list before approval: expected 404, got %d", w.Code)
	}
	if w := s.request(http.MethodGet, "/api/reviews", userToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("user list before approval: expected 404, got %d", w.Code)
	}

	// 管理员可见全部
	w = s.request(http.MethodGet, "/api/reviews", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list failed: %d %s", w.Code, w.Body.String())
	}

	// 普通用户不能流转状态
	target := fmt.Sprintf("/api/reviews/%d/status", created.ID)
	if w := s.request(http.MethodPut, target, userToken, map[string]any{"status": "approved"}); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin status update: expected 403, got %d", w.Code)
	}

	// 管理员审核通过，重复审核幂等
	if w := s.request(http.MethodPut, target, adminToken, map[string]any{"status": "approved"}); w.Code != http.StatusOK {
		t.Fatalf("approve failed: %d %s", w.Code, w.Body.String())
	}
	if w := s.request(http.MethodPut, target, adminToken, map[string]any{"status": "approved"}); w.Code != http.StatusOK {
		t.Fatalf("idempotent approve failed: %d", w.Code)
	}

	// 审核通过后访客可见
	w = s.request(http.MethodGet, "/api/reviews", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("guest list after approval failed: %d", w.Code)
	}
	var listed []struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode guest list: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != "approved" {
		t.Fatalf("unexpected guest list: %s", w.Body.String())
	}

	// 坏令牌被拒绝而不是降级为 guest
	if w := s.request(http.MethodGet, "/api/reviews", "garbage-token", nil); w.Code != http.StatusForbidden {
		t.Fatalf("bad token list: expected 403, got %d", w.Code)
	}
}

func TestVisitorTrackingLifecycle(t *testing.T) {
	s := newE2ESuite(t)

	// 尚无统计数据
	if w := s.request(http.MethodGet, "/api/visitor-stats", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("stats before visits: expected 404, got %d", w.Code)
	}

	// 同一访客同一天重复上报只计一次
	payload := map[string]any{"visit_date": "2024-01-10", "user_agent": "e2e-agent"}
	for i, wantNew := range []bool{true, false} {
		w := s.request(http.MethodPost, "/api/track-visitor", "", payload)
		if w.Code != http.StatusOK {
			t.Fatalf("track-visitor call %d failed: %d %s", i, w.Code, w.Body.String())
		}
		var resp struct {
			IsNewVisitor bool `json:"is_new_visitor"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode track response: %v", err)
		}
		if resp.IsNewVisitor != wantNew {
			t.Fatalf("call %d: expected is_new_visitor=%v, got %v", i, wantNew, resp.IsNewVisitor)
		}
	}

	w := s.request(http.MethodGet, "/api/visitor-stats", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("visitor-stats failed: %d", w.Code)
	}
	var stats struct {
		Date          string `json:"date"`
		VisitorsToday int64  `json:"visitors_today"`
		TotalVisitors int64  `json:"total_visitors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Date != "2024-01-10" || stats.VisitorsToday != 1 || stats.TotalVisitors != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// 在线心跳与计数
	if w := s.request(http.MethodPost, "/api/track-online", "", map[string]any{"session_id": "e2e-session"}); w.Code != http.StatusOK {
		t.Fatalf("track-online failed: %d", w.Code)
	}
	w = s.request(http.MethodGet, "/api/online-users", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("online-users failed: %d", w.Code)
	}
	var online struct {
		OnlineUsers int64 `json:"online_users"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &online); err != nil {
		t.Fatalf("decode online count: %v", err)
	}
	if online.OnlineUsers != 1 {
		t.Fatalf("expected 1 online user, got %d", online.OnlineUsers)
	}
}
