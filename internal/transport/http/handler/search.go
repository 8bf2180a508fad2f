package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-workspace/internal/app"
	"ai-workspace/internal/transport/http/response"
)

type SearchHandler struct {
	query      *app.QueryService
	fileSearch *app.EmailFileSearch
}

func NewSearchHandler(query *app.QueryService, fileSearch *app.EmailFileSearch) *SearchHandler {
	return &SearchHandler{query: query, fileSearch: fileSearch}
}

func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("query")
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "5"))

	results, err := h.query.Search(c.Request.Context(), query, topK, nil)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "search failed")
		return
	}

	response.OK(c, gin.H{
		"query":   query,
		"results": results,
	})
}

func (h *SearchHandler) SearchSimilar(c *gin.Context) {
	query := c.Query("query")
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "5"))

	answer, results, err := h.query.Answer(c.Request.Context(), query, topK)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer generation failed")
		return
	}

	response.OK(c, gin.H{
		"query":   query,
		"answer":  answer,
		"results": results,
	})
}

func (h *SearchHandler) SearchEmails(c *gin.Context) {
	params, ok := emailParams(c)
	if !ok {
		return
	}

	answer, results, err := h.query.AnswerEmails(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "email search failed")
		return
	}

	response.OK(c, gin.H{
		"answer":  answer,
		"results": results,
	})
}

func (h *SearchHandler) SearchEmailsFast(c *gin.Context) {
	params, ok := emailParams(c)
	if !ok {
		return
	}

	emails, err := h.fileSearch.Search(params)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "email file search failed")
		return
	}

	response.OK(c, gin.H{
		"count":  len(emails),
		"emails": emails,
	})
}

func emailParams(c *gin.Context) (app.EmailSearchParams, bool) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "days must be a non-negative integer")
			return app.EmailSearchParams{}, false
		}
		days = parsed
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	return app.EmailSearchParams{
		Query:   c.Query("query"),
		From:    c.Query("from_email"),
		To:      c.Query("to"),
		Subject: c.Query("subject"),
		Days:    days,
		TopK:    limit,
	}, true
}
