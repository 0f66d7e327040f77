package service

import (
	"errors"
	"strings"
	"time"

	"github.com/pinnacleapp/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrStatsNotFound       = errors.New("no visitor statistics available")
	ErrVisitInvalidInput   = errors.New("invalid visit input")
	ErrSessionInvalidInput = errors.New("invalid session id")
)

const (
	statsDateFormat = "2006-01-02"

	// 在线会话的不活跃窗口，超过即视为离线并被清理
	defaultOnlineWindow = 10 * time.Minute
)

// VisitorService 负责访客统计：按日去重计数、滚动周期汇总，
// 以及带滑动超时的在线会话集合。
type VisitorService struct {
	db           *gorm.DB
	onlineWindow time.Duration
}

// NewVisitorService 创建 VisitorService，默认在线窗口为 10 分钟。
func NewVisitorService(gdb *gorm.DB) *VisitorService {
	return &VisitorService{db: gdb, onlineWindow: defaultOnlineWindow}
}

// WithOnlineWindow 允许在测试或特定场景下调整在线窗口。
func (s *VisitorService) WithOnlineWindow(d time.Duration) *VisitorService {
	if d <= 0 {
		return s
	}
	s.onlineWindow = d
	return s
}

// RecordVisit 记录一次访问并返回该访客当天是否首次出现。
//
// 去重日志上 (ip, user_agent, visit_date) 的唯一约束是唯一的并发控制
// 原语：同一三元组的并发插入只有一个生效，落败方不改动任何计数。
// 插入成功后在同一事务内推导滚动汇总并更新当天的统计行。
func (s *VisitorService) RecordVisit(ipAddress, userAgent, visitDate string) (bool, error) {
	ipAddress = strings.TrimSpace(ipAddress)
	userAgent = strings.TrimSpace(userAgent)
	if ipAddress == "" || userAgent == "" {
		return false, ErrVisitInvalidInput
	}

	day, err := time.Parse(statsDateFormat, strings.TrimSpace(visitDate))
	if err != nil {
		return false, ErrVisitInvalidInput
	}
	date := day.Format(statsDateFormat)

	isNewVisitor := false

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		entry := db.VisitorLog{
			IPAddress: ipAddress,
			UserAgent: userAgent,
			VisitDate: date,
		}
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ip_address"}, {Name: "user_agent"}, {Name: "visit_date"}},
			DoNothing: true,
		}).Create(&entry)
		if insert.Error != nil {
			return insert.Error
		}

		if insert.RowsAffected == 0 {
			// 当天已记过该访客，计数保持不变
			return nil
		}
		isNewVisitor = true

		yesterday, err := s.visitorsOnDay(tx, day.AddDate(0, 0, -1).Format(statsDateFormat))
		if err != nil {
			return err
		}

		week, err := s.visitorsBetween(tx, day.AddDate(0, 0, -6).Format(statsDateFormat), date)
		if err != nil {
			return err
		}

		month, err := s.visitorsBetween(tx, day.AddDate(0, 0, -29).Format(statsDateFormat), date)
		if err != nil {
			return err
		}

		// 累计访客数等于去重日志的总行数，本次插入已包含在内
		var total int64
		if err := tx.Model(&db.VisitorLog{}).Count(&total).Error; err != nil {
			return err
		}

		var stats db.VisitorStats
		statsResult := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("date = ?", date).
			First(&stats)

		switch {
		case errors.Is(statsResult.Error, gorm.ErrRecordNotFound):
			stats = db.VisitorStats{Date: date}
		case statsResult.Error != nil:
			return statsResult.Error
		}

		stats.VisitorsToday++
		stats.VisitorsYesterday = yesterday
		stats.VisitorsThisWeek = week
		stats.VisitorsThisMonth = month
		stats.TotalVisitors = total

		return tx.Save(&stats).Error
	}); err != nil {
		return false, err
	}

	return isNewVisitor, nil
}

func (s *VisitorService) visitorsOnDay(tx *gorm.DB, date string) (int64, error) {
	var stats db.VisitorStats
	if err := tx.Where("date = ?", date).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return stats.VisitorsToday, nil
}

func (s *VisitorService) visitorsBetween(tx *gorm.DB, start, end string) (int64, error) {
	var sum int64
	err := tx.Model(&db.VisitorStats{}).
		Select("COALESCE(SUM(visitors_today), 0)").
		Where("date BETWEEN ? AND ?", start, end).
		Scan(&sum).Error
	return sum, err
}

// Heartbeat 以 session_id 为键刷新在线会话的活跃时间，随后顺带清理
// 超过不活跃窗口的会话，使在线集合无需后台任务也能自洁。
func (s *VisitorService) Heartbeat(sessionID, ipAddress string, now time.Time) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrSessionInvalidInput
	}

	session := db.OnlineUser{
		SessionID:  sessionID,
		IPAddress:  ipAddress,
		LastActive: now,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"ip_address":  ipAddress,
			"last_active": now,
			"updated_at":  now,
		}),
	}).Create(&session).Error; err != nil {
		return err
	}

	_, err := s.PurgeStale(now)
	return err
}

// OnlineCount 返回当前在线会话数。计数前同样执行清理，
// 保证心跳与计数两条路径口径一致。
func (s *VisitorService) OnlineCount(now time.Time) (int64, error) {
	if _, err := s.PurgeStale(now); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.Model(&db.OnlineUser{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeStale 删除不活跃窗口之外的在线会话，返回清理数量。
func (s *VisitorService) PurgeStale(now time.Time) (int64, error) {
	result := s.db.Where("last_active < ?", now.Add(-s.onlineWindow)).
		Delete(&db.OnlineUser{})
	return result.RowsAffected, result.Error
}

// LatestStats 返回最近一天的统计快照，尚无数据时返回 ErrStatsNotFound。
func (s *VisitorService) LatestStats() (*db.VisitorStats, error) {
	var stats db.VisitorStats
	if err := s.db.Order("date DESC").First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatsNotFound
		}
		return nil, err
	}
	return &stats, nil
}
