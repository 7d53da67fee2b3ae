package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewRiscoHandler().RegisterRoutes(r.Group("/api/v1"))
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAditivaEndpoint(t *testing.T) {
	rec := post(setupRouter(), "/api/v1/risco/aditiva", `{"exposicao":4,"probabilidade":4,"severidade":4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data struct {
			Regra     string `json:"regra"`
			Pontuacao string `json:"pontuacao"`
			Nivel     string `json:"nivel"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "aditiva", out.Data.Regra)
	assert.Equal(t, "4", out.Data.Pontuacao)
	assert.Equal(t, "critico", out.Data.Nivel)
}

func TestMultiplicativaEndpoint(t *testing.T) {
	r := setupRouter()

	rec := post(r, "/api/v1/risco/multiplicativa", `{"probabilidade":2,"severidade":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nivel":"baixo"`)

	rec = post(r, "/api/v1/risco/multiplicativa", `{"probabilidade":6,"severidade":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	rec = post(r, "/api/v1/risco/multiplicativa", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
