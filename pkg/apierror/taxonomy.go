package apierror

// 云厂商操作错误分类表
// 分类由 Command Executor 统一完成，上层只透传，不二次分类
// 每个代码对应一条固定的用户可见文案，厂商原始 stderr 只进日志
var (
	// ErrAuth 凭证失效或未登录，需要运维重新授权
	ErrAuth = &Error{
		Code:       "AUTH_ERROR",
		Message:    "Cloud provider authentication failed. Ask an operator to refresh the service credentials.",
		HTTPStatus: 502,
	}

	// ErrPermission 服务账号缺少所需权限，需要运维处理
	ErrPermission = &Error{
		Code:       "PERMISSION_ERROR",
		Message:    "The service account does not have permission to perform this operation.",
		HTTPStatus: 502,
	}

	// ErrQuota 项目配额已用尽，用户可稍后重试或更换区域
	ErrQuota = &Error{
		Code:       "QUOTA_ERROR",
		Message:    "The project quota for this resource has been reached. Try again later or choose another region.",
		HTTPStatus: 503,
	}

	// ErrZoneExhausted 区域资源池暂时没有容量，用户可稍后重试或更换区域
	ErrZoneExhausted = &Error{
		Code:       "ZONE_EXHAUSTED",
		Message:    "The selected region has no capacity for this configuration right now. Try again later or choose another region.",
		HTTPStatus: 503,
	}

	// ErrNotFound 目标资源在云厂商侧不存在
	ErrNotFound = &Error{
		Code:       "NOT_FOUND",
		Message:    "The requested resource was not found on the cloud provider.",
		HTTPStatus: 404,
	}

	// ErrTimeout 命令超时，子进程已被强制终止，用户可重试
	ErrTimeout = &Error{
		Code:       "TIMEOUT",
		Message:    "The cloud provider did not respond in time. Try again.",
		HTTPStatus: 504,
	}

	// ErrInvalidConfig 请求的配置被云厂商拒绝
	ErrInvalidConfig = &Error{
		Code:       "INVALID_CONFIG",
		Message:    "The requested configuration was rejected by the cloud provider.",
		HTTPStatus: 400,
	}

	// ErrCommand 未能归入其他分类的命令失败，兜底分类
	ErrCommand = &Error{
		Code:       "COMMAND_ERROR",
		Message:    "The cloud provider command failed unexpectedly.",
		HTTPStatus: 502,
	}

	// ErrSDKNotInstalled 执行环境中找不到云厂商命令行工具
	ErrSDKNotInstalled = &Error{
		Code:       "SDK_NOT_INSTALLED",
		Message:    "The cloud provider SDK is not installed on the server.",
		HTTPStatus: 503,
	}
)
