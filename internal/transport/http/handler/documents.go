package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-workspace/internal/app"
	"ai-workspace/internal/extract"
	"ai-workspace/internal/model"
	"ai-workspace/internal/transport/http/response"
)

type DocumentsHandler struct {
	ingest    *app.IngestService
	documents *app.DocumentService
	deleter   *app.DeleteService
	uploadDir string
}

func NewDocumentsHandler(ingest *app.IngestService, documents *app.DocumentService, deleter *app.DeleteService, uploadDir string) *DocumentsHandler {
	return &DocumentsHandler{
		ingest:    ingest,
		documents: documents,
		deleter:   deleter,
		uploadDir: uploadDir,
	}
}

func (h *DocumentsHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}

	filename := filepath.Base(file.Filename)
	path := filepath.Join(h.uploadDir, filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save uploaded file failed")
		return
	}

	meta := model.FileMeta{Filename: filename}
	count, err := h.ingest.IngestFile(c.Request.Context(), path, filename, meta.Map())
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedFormat):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFormat, err.Error())
		case errors.Is(err, extract.ErrProtectedDocument):
			response.Error(c, http.StatusBadRequest, response.CodeProtectedDocument, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest uploaded file failed")
		}
		return
	}

	response.OK(c, gin.H{
		"filename":      filename,
		"chunks_stored": count,
	})
}

func (h *DocumentsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	docs, total, err := h.documents.List(page, pageSize)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	withPreviews := c.DefaultQuery("previews", "false") == "true"
	if withPreviews {
		for i := range docs {
			if preview, previewErr := h.documents.Preview(docs[i].Filename); previewErr == nil {
				docs[i].Preview = preview
			}
		}
	}

	response.OK(c, gin.H{
		"documents": docs,
		"total":     total,
		"page":      page,
	})
}

func (h *DocumentsHandler) Delete(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing name parameter")
		return
	}

	deleted, err := h.deleter.DeleteByName(c.Request.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}

	response.OK(c, gin.H{
		"name":           name,
		"chunks_deleted": deleted,
	})
}
