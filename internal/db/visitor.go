package db

import "time"

// VisitorStats 记录按自然日汇总的访客统计快照。
// date 使用 YYYY-MM-DD 字符串按文本存储，ISO 日期按字典序比较即可做区间查询。
// 不能声明为 date 列类型：sqlite 驱动会把 date 列扫描成 time.Time，
// 回写后键变成 RFC3339 字符串，同一天就会出现第二行。
type VisitorStats struct {
	ID                uint   `gorm:"primaryKey"`
	Date              string `gorm:"size:10;uniqueIndex;not null"`
	VisitorsToday     int64  `gorm:"not null;default:0"`
	VisitorsYesterday int64  `gorm:"not null;default:0"`
	VisitorsThisWeek  int64  `gorm:"not null;default:0"`
	VisitorsThisMonth int64  `gorm:"not null;default:0"`
	TotalVisitors     int64  `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName 指定自定义表名。
func (VisitorStats) TableName() string {
	return "visitor_stats"
}

// VisitorLog 是访客去重日志：(ip, user_agent, visit_date) 的唯一约束
// 保证同一访客一天只被计数一次。只追加，从不删除。
type VisitorLog struct {
	ID        uint   `gorm:"primaryKey"`
	IPAddress string `gorm:"size:45;not null;uniqueIndex:idx_visitor_log_dedup"`
	UserAgent string `gorm:"size:512;not null;uniqueIndex:idx_visitor_log_dedup"`
	VisitDate string `gorm:"size:10;not null;uniqueIndex:idx_visitor_log_dedup"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (VisitorLog) TableName() string {
	return "visitor_logs"
}

// OnlineUser 记录在线会话的活跃时间，超过 10 分钟未心跳即被清理。
type OnlineUser struct {
	ID         uint      `gorm:"primaryKey"`
	SessionID  string    `gorm:"size:128;uniqueIndex;not null"`
	IPAddress  string    `gorm:"size:45"`
	LastActive time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName 指定自定义表名。
func (OnlineUser) TableName() string {
	return "online_users"
}
