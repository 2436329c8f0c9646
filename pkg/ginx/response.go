package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/clouddesk/pkg/apierror"
)

// renderResponse 渲染 JSON 响应
func renderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	switch v := response.(type) {
	case string:
		ctx.String(http.StatusOK, v)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// renderError 渲染错误响应
// 如果 err 链上有 *apierror.Error，使用其 Code、Message 和 HTTP 状态码；
// 否则使用默认的错误格式
func renderError(ctx *gin.Context, statusCode int, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatus > 0 {
			statusCode = apiErr.HTTPStatus
		}
		ctx.JSON(statusCode, apierror.NewErrorResponse(apiErr))
		return
	}

	ctx.JSON(statusCode, gin.H{"error": err.Error()})
}
