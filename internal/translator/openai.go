package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// reasoningBlock 匹配模型输出中的推理过程，如 <think>...</think>
var reasoningBlock = regexp2.MustCompile(
	`<(reasoning|think|analysis|思考|思路|推理|分析)>.*?</\1>`,
	regexp2.IgnoreCase|regexp2.Singleline)

// statusRoundTripper 记录最近一次请求的状态码
type statusRoundTripper struct {
	base http.RoundTripper
	code *atomic.Int32
}

func (s *statusRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := s.base.RoundTrip(req)
	if err == nil && resp != nil && s.code != nil {
		s.code.Store(int32(resp.StatusCode))
	}
	return resp, err
}

// OpenAI 基于 OpenAI 兼容接口的翻译器
type OpenAI struct {
	client     *openai.Client
	cfg        config.ModelConfig
	sourceLang string
	targetLang string
	log        *zap.Logger
	lastStatus atomic.Int32

	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewOpenAI 创建 OpenAI 翻译器
func NewOpenAI(cfg config.ModelConfig, sourceLang, targetLang string, log *zap.Logger) (*OpenAI, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("%w: model.key is empty", ErrInvalidAPIKey)
	}
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("%w: model.model_id is empty", ErrInvalidConfig)
	}
	if log == nil {
		log = zap.NewNop()
	}

	t := &OpenAI{
		cfg:          cfg,
		sourceLang:   sourceLang,
		targetLang:   targetLang,
		log:          log,
		maxRetries:   3,
		initialDelay: time.Second,
		maxDelay:     30 * time.Second,
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &statusRoundTripper{base: http.DefaultTransport, code: &t.lastStatus},
	}

	clientConfig := openai.DefaultConfig(cfg.Key)
	clientConfig.HTTPClient = httpClient
	if cfg.BaseURL != "" {
		// go-openai 会自行拼接路径，BaseURL 不能以斜杠结尾
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	t.client = openai.NewClientWithConfig(clientConfig)

	log.Debug("创建 OpenAI 客户端",
		zap.String("模型ID", cfg.ModelID),
		zap.String("基础URL", clientConfig.BaseURL),
		zap.String("API密钥", maskAuthToken(cfg.Key)),
		zap.Duration("超时时间", timeout))

	return t, nil
}

func (t *OpenAI) Name() string { return config.ProviderOpenAI + ":" + t.cfg.ModelID }

// Translate 翻译一个单元的文本
func (t *OpenAI) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	req := openai.ChatCompletionRequest{
		Model: t.cfg.ModelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(t.sourceLang, t.targetLang)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: float32(t.cfg.Temperature),
		MaxTokens:   t.cfg.MaxOutputTokens,
	}

	var lastErr error
	delay := t.initialDelay
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			t.log.Warn("重试翻译请求",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
			if delay > t.maxDelay {
				delay = t.maxDelay
			}
		}

		out, err := t.complete(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return "", lastErr
}

func (t *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		t.log.Error("API 调用失败",
			zap.String("模型ID", t.cfg.ModelID),
			zap.Int32("状态码", t.lastStatus.Load()),
			zap.Error(err))
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := filterReasoningContent(resp.Choices[0].Message.Content)
	t.log.Debug("API 调用成功",
		zap.String("模型ID", t.cfg.ModelID),
		zap.Int("提示词令牌数", resp.Usage.PromptTokens),
		zap.Int("完成令牌数", resp.Usage.CompletionTokens))
	return content, nil
}

// classify 把 go-openai 的错误映射为包内的错误类型
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrContextCancelled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case status >= 500:
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	return err
}

func retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServer) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrEmptyResponse)
}

// systemPrompt 构建系统提示词
func systemPrompt(sourceLang, targetLang string) string {
	var sb strings.Builder
	sb.WriteString("You are a professional translator. ")
	fmt.Fprintf(&sb, "Translate the user's text from %s to %s. ", sourceLang, targetLang)
	sb.WriteString("Keep every line break exactly where it is and do not merge or split lines. ")
	sb.WriteString("Keep list markers, numbers, codes and placeholders unchanged. ")
	sb.WriteString("Reply with the translation only, without explanations or quotes.")
	return sb.String()
}

// filterReasoningContent 过滤掉推理过程内容
func filterReasoningContent(content string) string {
	result, err := reasoningBlock.Replace(content, "", -1, -1)
	if err != nil {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(result)
}

// maskAuthToken 遮蔽认证令牌，只显示前4位和后4位
func maskAuthToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
