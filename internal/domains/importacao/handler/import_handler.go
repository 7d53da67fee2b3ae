package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"backoffice-backend/internal/domains/importacao/model"
	"backoffice-backend/internal/domains/importacao/service"
	"backoffice-backend/internal/shared/middleware"
	"backoffice-backend/internal/shared/response"
)

// ImportHandler exposes the import runs over HTTP
type ImportHandler struct {
	service      service.ServiceInterface
	maxFileSize  int64
	asyncDefault bool
}

func NewImportHandler(svc service.ServiceInterface, maxFileSize int64, asyncDefault bool) *ImportHandler {
	return &ImportHandler{service: svc, maxFileSize: maxFileSize, asyncDefault: asyncDefault}
}

// RegisterRoutes mounts the import routes on an authenticated group
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/imports")
	{
		imports.POST("/:tipo/validate", h.Validate)
		imports.POST("/sessions/:id/confirm", h.Confirm)
		imports.GET("/sessions/:id", h.GetRun)
		imports.GET("/logs", h.ListLogs)
	}
}

// ConfirmSummary is the counts shown to the user after a run
type ConfirmSummary struct {
	SessionID string              `json:"session_id"`
	State     model.RunState      `json:"state"`
	Created   int                 `json:"created"`
	Updated   int                 `json:"updated"`
	Errored   int                 `json:"errored"`
	Result    *model.ImportResult `json:"result,omitempty"`
}

// Validate - POST /api/v1/imports/:tipo/validate (multipart "file")
func (h *ImportHandler) Validate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "user not authenticated")
		return
	}

	importType, err := model.ParseImportType(c.Param("tipo"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}
	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		response.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds %d bytes", h.maxFileSize))
		return
	}

	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}

	report, err := h.service.Validate(c.Request.Context(), service.ValidateInput{
		Type:     importType,
		UserID:   userID,
		FileName: file.Filename,
		Data:     data,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// Confirm - POST /api/v1/imports/sessions/:id/confirm[?async=true]
func (h *ImportHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "user not authenticated")
		return
	}
	sessionID := c.Param("id")

	async := h.asyncDefault
	if raw := c.Query("async"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "async must be a boolean")
			return
		}
		async = v
	}

	if async {
		run, err := h.service.ConfirmAsync(c.Request.Context(), sessionID, userID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		response.Success(c, http.StatusAccepted, ConfirmSummary{SessionID: run.ID, State: run.State})
		return
	}

	result, err := h.service.Confirm(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ConfirmSummary{
		SessionID: sessionID,
		State:     model.StateDone,
		Created:   result.Created,
		Updated:   result.Updated,
		Errored:   result.Errored(),
		Result:    result,
	})
}

// GetRun - GET /api/v1/imports/sessions/:id
func (h *ImportHandler) GetRun(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "user not authenticated")
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, run)
}

// ListLogs - GET /api/v1/imports/logs?page=&page_size=&tipo=&mine=true
func (h *ImportHandler) ListLogs(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "user not authenticated")
		return
	}

	page, err1 := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, err2 := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(model.DefaultPageSize)))
	if err1 != nil || err2 != nil {
		response.BadRequest(c, "page and page_size must be integers")
		return
	}

	filter := model.LogFilter{Page: page, PageSize: pageSize}
	if raw := c.Query("tipo"); raw != "" {
		t, err := model.ParseImportType(raw)
		if err != nil {
			h.handleError(c, err)
			return
		}
		filter.TipoImportacao = t
	}
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine {
		filter.UsuarioID = userID
	}

	result, err := h.service.ListLogs(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Items, &response.Meta{
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

func (h *ImportHandler) handleError(c *gin.Context, err error) {
	status, message, code := model.GetErrorResponse(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Import request failed")
	}
	response.ErrorResponse(c, status, code, message)
}
