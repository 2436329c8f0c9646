package ginx

import (
	"github.com/gin-gonic/gin"
)

// bindArgs 绑定请求参数到 args 结构体
// 优先级：JSON Body > URI 参数 > Query 参数
// GET/DELETE 通常没有 body，直接落到 URI 和 Query 绑定
func bindArgs(ctx *gin.Context, args interface{}) error {
	// 1. 尝试从 JSON body 绑定
	// 直接尝试绑定，不依赖 ContentLength（因为 ContentLength 可能不准确）
	if err := ctx.ShouldBindJSON(args); err == nil {
		// JSON 绑定成功，同时尝试绑定 URI 和 Query 参数
		_ = ctx.ShouldBindUri(args)
		_ = ctx.ShouldBindQuery(args)
		return nil
	}

	// 2. 尝试从 URI 参数绑定
	if err := ctx.ShouldBindUri(args); err == nil {
		_ = ctx.ShouldBindQuery(args)
		return nil
	}

	// 3. 尝试从 Query 参数绑定
	return ctx.ShouldBindQuery(args)
}
