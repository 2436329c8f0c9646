// Package ginx 提供 gin 框架的 handler 适配器，支持自动参数绑定和响应处理
//
// 所有响应都使用 JSON 格式。错误响应统一序列化为 apierror.ErrorResponse，
// HTTP 状态码取自 apierror.Error 中定义的状态码。
//
// 支持多种 handler 函数签名：
//
//	// 1. 有参数，有返回值，有 error
//	func(c *gin.Context, args *Args) (resp, error)
//
//	// 2. 有参数，只有 error
//	func(c *gin.Context, args *Args) error
//
//	// 3. 无参数，有返回值，有 error
//	func(c *gin.Context) (resp, error)
//
//	// 4. 无参数，只有返回值
//	func(c *gin.Context) resp
//
// 使用示例：
//
//	router := gin.Default()
//
//	// 有参数，有返回值，有 error
//	router.POST("/desktops", ginx.Adapt5(func(c *gin.Context, args *CreateDesktopArgs) (*Desktop, error) {
//	    return &Desktop{...}, nil
//	}))
//
//	// 有参数，只有 error
//	router.DELETE("/desktops/:id", ginx.Adapt4(func(c *gin.Context, args *DescribeDesktopArgs) error {
//	    return nil
//	}))
//
//	// 无参数，有返回值
//	router.GET("/health", ginx.Adapt2(func(c *gin.Context) string {
//	    return "ok"
//	}))
package ginx
