package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pinnacleapp/internal/db"
	"github.com/pinnacleapp/internal/service"
)

type reviewSubmitPayload struct {
	Name   string `json:"name"`
	Review string `json:"review"`
	Rating int    `json:"rating"`
}

type reviewStatusPayload struct {
	Status string `json:"status"`
}

type reviewView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Review    string `json:"review"`
	Rating    int    `json:"rating"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func newReviewView(review db.Review) reviewView {
	return reviewView{
		ID:        review.ID,
		Name:      review.Name,
		Review:    review.Review,
		Rating:    review.Rating,
		Status:    review.Status,
		Timestamp: review.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateReview 接收匿名评论，校验通过后以 pending 状态入库
func (a *API) CreateReview(c *gin.Context) {
	var payload reviewSubmitPayload
	if !bindJSON(c, &payload, "name, review and rating are required") {
		return
	}

	review, err := a.reviews.Submit(payload.Name, payload.Review, payload.Rating)
	if err != nil {
		if errors.Is(err, service.ErrReviewInvalidInput) {
			respondError(c, http.StatusBadRequest, "name and review must be non-empty and rating an integer between 1 and 5")
			return
		}
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "review submitted successfully",
		"id":      review.ID,
	})
}

// GetReviews 返回评论分页。管理员可见全部评论，
// 其他调用者（含未登录的 guest）只见已通过审核的。
func (a *API) GetReviews(c *gin.Context) {
	offset, err := parseNonNegativeQuery(c, "offset", 0)
	if err != nil {
		respondError(c, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, err := parseNonNegativeQuery(c, "limit", 5)
	if err != nil {
		respondError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	reviews, err := a.reviews.List(callerRole(c), offset, limit)
	if err != nil {
		if errors.Is(err, service.ErrReviewInvalidInput) {
			respondError(c, http.StatusBadRequest, "invalid pagination")
			return
		}
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	if len(reviews) == 0 {
		respondError(c, http.StatusNotFound, "no reviews found")
		return
	}

	views := make([]reviewView, 0, len(reviews))
	for _, review := range reviews {
		views = append(views, newReviewView(review))
	}

	c.JSON(http.StatusOK, views)
}

// UpdateReviewStatus 流转评论状态，仅限管理员。
// 重复设置同一状态按幂等成功处理。
func (a *API) UpdateReviewStatus(c *gin.Context) {
	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload reviewStatusPayload
	if !bindJSON(c, &payload, "status is required") {
		return
	}

	review, err := a.reviews.SetStatus(callerRole(c), reviewID, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminRequired):
			respondError(c, http.StatusForbidden, "admin access required")
		case errors.Is(err, service.ErrReviewStatusInvalid):
			respondError(c, http.StatusBadRequest, "status must be approved or rejected")
		case errors.Is(err, service.ErrReviewNotFound):
			respondError(c, http.StatusNotFound, "review not found")
		default:
			respondError(c, http.StatusInternalServerError, "database error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "review status updated",
		"review":  newReviewView(*review),
	})
}
