package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-workspace/internal/app"
	"ai-workspace/internal/transport/http/response"
)

type ActivityHandler struct {
	activityService *app.ActivityService
}

type recordActivityRequest struct {
	Page     string `json:"page" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Metadata string `json:"metadata"`
}

func NewActivityHandler(activityService *app.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Record(c *gin.Context) {
	var req recordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	recorded, err := h.activityService.Record(app.ActivityInput{
		Page:     req.Page,
		Type:     req.Type,
		Metadata: req.Metadata,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "record activity failed")
		return
	}

	status := "recorded"
	if !recorded {
		status = "duplicate"
	}
	response.OK(c, gin.H{"status": status})
}

func (h *ActivityHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 100 {
		limit = 5
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	activities, err := h.activityService.Recent(days, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list activities failed")
		return
	}
	response.OK(c, gin.H{"activities": activities})
}
