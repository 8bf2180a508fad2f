package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-workspace/internal/app"
	"ai-workspace/internal/connector/gmail"
	"ai-workspace/internal/connector/googledocs"
	"ai-workspace/internal/transport/http/response"
)

type GoogleDocsHandler struct {
	importer *googledocs.Importer
	query    *app.QueryService
}

type importDocRequest struct {
	Account string `json:"account" binding:"required"`
	URL     string `json:"url" binding:"required"`
}

func NewGoogleDocsHandler(importer *googledocs.Importer, query *app.QueryService) *GoogleDocsHandler {
	return &GoogleDocsHandler{importer: importer, query: query}
}

func (h *GoogleDocsHandler) Import(c *gin.Context) {
	var req importDocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.importer.Import(c.Request.Context(), req.Account, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, googledocs.ErrInvalidURL):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidURL, err.Error())
		case errors.Is(err, gmail.ErrNoCredential):
			response.Error(c, http.StatusNotFound, response.CodeNoCredential, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "import document failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *GoogleDocsHandler) List(c *gin.Context) {
	docs, err := h.query.ListGoogleDocs(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list imported documents failed")
		return
	}
	response.OK(c, gin.H{"documents": docs})
}
