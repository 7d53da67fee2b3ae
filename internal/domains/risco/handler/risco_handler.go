package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice-backend/internal/domains/risco/model"
	"backoffice-backend/internal/shared/response"
)

// RiscoHandler exposes the two risk classification rules
type RiscoHandler struct{}

func NewRiscoHandler() *RiscoHandler {
	return &RiscoHandler{}
}

func (h *RiscoHandler) RegisterRoutes(rg *gin.RouterGroup) {
	risco := rg.Group("/risco")
	{
		risco.POST("/aditiva", h.Aditiva)
		risco.POST("/multiplicativa", h.Multiplicativa)
	}
}

// Aditiva - POST /api/v1/risco/aditiva
func (h *RiscoHandler) Aditiva(c *gin.Context) {
	var req model.AditivaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid risk factors", err)
		return
	}

	result, err := model.ClassificacaoAditiva(req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Multiplicativa - POST /api/v1/risco/multiplicativa
func (h *RiscoHandler) Multiplicativa(c *gin.Context) {
	var req model.MultiplicativaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid risk factors", err)
		return
	}

	result, err := model.ClassificacaoMultiplicativa(req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, http.StatusOK, result)
}
