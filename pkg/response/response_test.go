package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"checkout-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/test", handler)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestOK_WithData(t *testing.T) {
	w := perform(func(c *gin.Context) {
		OK(c, gin.H{"payment_url": "https://pay.example.com/pay/X"})
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["data"])
	_, hasErr := body["error"]
	assert.False(t, hasErr)
}

func TestOK_NilData(t *testing.T) {
	w := perform(func(c *gin.Context) {
		OK(c, nil)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestError_AppError(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, apperror.ErrInvalidSignature())
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid webhook signature", body["error"])
}

func TestError_WrappedAppError(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, errors.Join(errors.New("context"), apperror.ErrNotFound("transaction")))
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestError_UnknownError(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, errors.New("pq: connection reset"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	// Internal details never leak to the caller.
	assert.Equal(t, "Internal server error", body["error"])
}
