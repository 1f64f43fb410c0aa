package translator

import "errors"

// Common errors
var (
	// ErrInvalidConfig 配置无效错误
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidAPIKey API密钥无效错误
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrTimeout 超时错误
	ErrTimeout = errors.New("operation timeout")

	// ErrRateLimited 速率限制错误
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServer 服务端错误（5xx）
	ErrServer = errors.New("server error")

	// ErrEmptyResponse 模型返回空结果
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrContextCancelled 上下文取消错误
	ErrContextCancelled = errors.New("context cancelled")
)
