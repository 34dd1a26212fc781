package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"loteamento/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() { gin.SetMode(gin.TestMode) }

func TestRespondError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrInvalidSnapshot, http.StatusBadRequest},
		{service.ErrInvalidConfirmation, http.StatusBadRequest},
		{service.ErrInvalidCreds, http.StatusUnauthorized},
		{service.ErrRegistrationClosed, http.StatusForbidden},
		{fmt.Errorf("%w: file x is missing", service.ErrBackupNotFound), http.StatusNotFound},
		{service.ErrLotCodeExists, http.StatusConflict},
		{errors.Join(service.ErrConflict, errors.New("UNIQUE constraint failed")), http.StatusConflict},
		{fmt.Errorf("%w: disk full", service.ErrStorage), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)
		respondError(c, zap.NewNop(), tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	respondError(c, zap.NewNop(), fmt.Errorf("%w: dial tcp 10.0.0.1:3306", service.ErrStorage))
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestParsePagination(t *testing.T) {
	for query, want := range map[string][2]int{
		"":                   {1, 20},
		"?page=3&limit=50":   {3, 50},
		"?page=-1&limit=500": {1, 20},
		"?page=x&limit=y":    {1, 20},
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/"+query, nil)
		page, limit := parsePagination(c)
		assert.Equal(t, want, [2]int{page, limit}, query)
	}
}

func TestUploadImage_NotConfigured(t *testing.T) {
	r := gin.New()
	r.POST("/upload", NewUploadHandler(nil, "x", nil).UploadImage)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/upload", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
