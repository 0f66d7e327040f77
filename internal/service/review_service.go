package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pinnacleapp/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewInvalidInput  = errors.New("invalid review input")
	ErrReviewStatusInvalid = errors.New("invalid review status")
	ErrAdminRequired       = errors.New("admin access required")
)

const (
	maxReviewNameLength = 255
	maxReviewTextLength = 1000
	defaultReviewLimit  = 5
)

// ReviewService 负责评论的提交、按角色可见性列取与状态流转。
type ReviewService struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

// NewReviewService 创建 ReviewService。提交内容来自匿名访客，
// 入库前用严格策略剥离所有 HTML。
func NewReviewService(gdb *gorm.DB) *ReviewService {
	return &ReviewService{db: gdb, sanitizer: bluemonday.StrictPolicy()}
}

// Submit 校验并保存一条评论，初始状态为 pending。
// 校验失败不会触达数据库。
func (s *ReviewService) Submit(name, text string, rating int) (*db.Review, error) {
	name = strings.TrimSpace(s.sanitizer.Sanitize(name))
	text = strings.TrimSpace(s.sanitizer.Sanitize(text))

	if name == "" || text == "" {
		return nil, ErrReviewInvalidInput
	}
	// 长度上限按字符数计，多字节名字不吃亏
	if utf8.RuneCountInString(name) > maxReviewNameLength || utf8.RuneCountInString(text) > maxReviewTextLength {
		return nil, ErrReviewInvalidInput
	}
	if rating < 1 || rating > 5 {
		return nil, ErrReviewInvalidInput
	}

	review := db.Review{
		Name:   name,
		Review: text,
		Rating: rating,
		Status: db.ReviewStatusPending,
	}
	if err := s.db.Create(&review).Error; err != nil {
		return nil, err
	}

	return &review, nil
}

// List 按角色返回评论分页：管理员可见全部，其余角色（含 guest）
// 只能看到已通过审核的评论，均按最新优先排序。
func (s *ReviewService) List(callerRole string, offset, limit int) ([]db.Review, error) {
	if offset < 0 || limit < 0 {
		return nil, ErrReviewInvalidInput
	}
	if limit == 0 {
		limit = defaultReviewLimit
	}

	query := s.db.Model(&db.Review{})
	if callerRole != db.RoleAdmin {
		query = query.Where("status = ?", db.ReviewStatusApproved)
	}

	var reviews []db.Review
	if err := query.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, err
	}

	return reviews, nil
}

// SetStatus 将评论状态流转为 approved 或 rejected，仅限管理员。
// 目标状态与当前一致时视为幂等成功，方便调用方重试。
func (s *ReviewService) SetStatus(callerRole string, reviewID uint, newStatus string) (*db.Review, error) {
	if callerRole != db.RoleAdmin {
		return nil, ErrAdminRequired
	}
	if newStatus != db.ReviewStatusApproved && newStatus != db.ReviewStatusRejected {
		return nil, ErrReviewStatusInvalid
	}

	var review db.Review
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		if review.Status == newStatus {
			return nil
		}

		review.Status = newStatus
		return tx.Save(&review).Error
	}); err != nil {
		return nil, err
	}

	return &review, nil
}
