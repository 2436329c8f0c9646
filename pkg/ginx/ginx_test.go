package ginx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/clouddesk/pkg/apierror"
	"github.com/jimyag/clouddesk/pkg/ginx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationError struct {
	Message string
}

func (e *validationError) Error() string {
	return e.Message
}

// ValidatedArgs 用于测试 IsValid 方法
type ValidatedArgs struct {
	Name string `json:"name"`
}

func (args *ValidatedArgs) IsValid() error {
	if args.Name == "" {
		return &validationError{Message: "name is required"}
	}
	return nil
}

type describeArgs struct {
	ID string `uri:"id" binding:"required"`
}

func TestAdapt2_NoArgsReturn(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/test", ginx.Adapt2(func(c *gin.Context) string {
		return "ok"
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestAdapt3_NoArgsReturnError(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/test", ginx.Adapt3(func(c *gin.Context) (gin.H, error) {
			return gin.H{"status": "ok"}, nil
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("classified error uses its own status", func(t *testing.T) {
		t.Parallel()
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/test", ginx.Adapt3(func(c *gin.Context) (gin.H, error) {
			return nil, apierror.ErrNotFound
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, apierror.ErrNotFound.HTTPStatus, w.Code)

		var resp apierror.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, apierror.ErrNotFound.Code, resp.Error.Code)
	})

	t.Run("plain error falls back to 500", func(t *testing.T) {
		t.Parallel()
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/test", ginx.Adapt3(func(c *gin.Context) (gin.H, error) {
			return nil, &validationError{Message: "boom"}
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"boom"}`, w.Body.String())
	})
}

func TestAdapt4_ArgsError(t *testing.T) {
	t.Parallel()

	t.Run("uri binding and no content on success", func(t *testing.T) {
		t.Parallel()
		gin.SetMode(gin.TestMode)
		router := gin.New()

		var gotID string
		router.DELETE("/desktops/:id", ginx.Adapt4(func(c *gin.Context, args *describeArgs) error {
			gotID = args.ID
			return nil
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/desktops/desk-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "desk-1", gotID)
	})

	t.Run("handler error is rendered", func(t *testing.T) {
		t.Parallel()
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.DELETE("/desktops/:id", ginx.Adapt4(func(c *gin.Context, args *describeArgs) error {
			return apierror.ErrPermission
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/desktops/desk-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, apierror.ErrPermission.HTTPStatus, w.Code)
	})
}

func TestAdapt5_ArgsReturnError(t *testing.T) {
	t.Parallel()

	t.Run("json body binding", func(t *testing.T) {
		t.Parallel()
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.POST("/test", ginx.Adapt5(func(c *gin.Context, args *ValidatedArgs) (gin.H, error) {
			return gin.H{"name": args.Name}, nil
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name":"alice"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"name":"alice"}`, w.Body.String())
	})

	t.Run("IsValid rejection returns 400", func(t *testing.T) {
		t.Parallel()
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.POST("/test", ginx.Adapt5(func(c *gin.Context, args *ValidatedArgs) (gin.H, error) {
			return gin.H{"name": args.Name}, nil
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "name is required")
	})
}
