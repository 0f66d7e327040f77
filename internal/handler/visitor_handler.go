package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pinnacleapp/internal/db"
	"github.com/pinnacleapp/internal/service"
)

type trackVisitorPayload struct {
	VisitDate string `json:"visit_date"`
	UserAgent string `json:"user_agent"`
}

type trackOnlinePayload struct {
	SessionID string `json:"session_id"`
}

type visitorStatsView struct {
	Date              string `json:"date"`
	VisitorsToday     int64  `json:"visitors_today"`
	VisitorsYesterday int64  `json:"visitors_yesterday"`
	VisitorsThisWeek  int64  `json:"visitors_this_week"`
	VisitorsThisMonth int64  `json:"visitors_this_month"`
	TotalVisitors     int64  `json:"total_visitors"`
}

func newVisitorStatsView(stats db.VisitorStats) visitorStatsView {
	return visitorStatsView{
		Date:              stats.Date,
		VisitorsToday:     stats.VisitorsToday,
		VisitorsYesterday: stats.VisitorsYesterday,
		VisitorsThisWeek:  stats.VisitorsThisWeek,
		VisitorsThisMonth: stats.VisitorsThisMonth,
		TotalVisitors:     stats.TotalVisitors,
	}
}

// TrackVisitor 记录一次访客到访并更新当天统计。
// 同一 (ip, user_agent, 日期) 当天重复上报不是错误，只是不再计数。
func (a *API) TrackVisitor(c *gin.Context) {
	var payload trackVisitorPayload
	if !bindJSON(c, &payload, "visit_date is required") {
		return
	}

	userAgent := strings.TrimSpace(payload.UserAgent)
	if userAgent == "" {
		userAgent = strings.TrimSpace(c.GetHeader("User-Agent"))
	}
	if userAgent == "" {
		userAgent = "Unknown"
	}

	isNewVisitor, err := a.visitors.RecordVisit(c.ClientIP(), userAgent, payload.VisitDate)
	if err != nil {
		if errors.Is(err, service.ErrVisitInvalidInput) {
			respondError(c, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
			return
		}
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "visitor logged and stats updated successfully",
		"is_new_visitor": isNewVisitor,
	})
}

// TrackOnline 刷新在线会话心跳，顺带清理超时会话
func (a *API) TrackOnline(c *gin.Context) {
	var payload trackOnlinePayload
	if !bindJSON(c, &payload, "session_id is required") {
		return
	}

	if err := a.visitors.Heartbeat(payload.SessionID, c.ClientIP(), time.Now()); err != nil {
		if errors.Is(err, service.ErrSessionInvalidInput) {
			respondError(c, http.StatusBadRequest, "session_id is required")
			return
		}
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "online user tracked successfully"})
}

// GetOnlineUsers 返回当前在线会话数
func (a *API) GetOnlineUsers(c *gin.Context) {
	count, err := a.visitors.OnlineCount(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"online_users": count})
}

// GetVisitorStats 返回最近一天的访客统计快照
func (a *API) GetVisitorStats(c *gin.Context) {
	stats, err := a.visitors.LatestStats()
	if err != nil {
		if errors.Is(err, service.ErrStatsNotFound) {
			respondError(c, http.StatusNotFound, "no visitor statistics available")
			return
		}
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	c.JSON(http.StatusOK, newVisitorStatsView(*stats))
}
