package config

import (
	"fmt"
	"strings"

	"github.com/nerdneilsfield/go-docx-translator/internal/docx"
	"github.com/spf13/viper"
)

// 支持的翻译提供商
const (
	ProviderIdentity = "identity"
	ProviderGlossary = "glossary"
	ProviderOpenAI   = "openai"
)

// ModelConfig 保存 OpenAI 兼容模型的配置
type ModelConfig struct {
	ModelID         string  `mapstructure:"model_id"`
	BaseURL         string  `mapstructure:"base_url"`
	Key             string  `mapstructure:"key"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	Timeout         int     `mapstructure:"timeout"` // 请求超时时间（秒）
}

// Config 保存文档翻译器的所有配置
type Config struct {
	Mode                  string   `mapstructure:"mode"`                    // 回写模式: replace 或 bilingual
	ResultDir             string   `mapstructure:"result_dir"`              // 输出文档目录
	TempDir               string   `mapstructure:"temp_dir"`                // 临时工作目录的根目录
	OutputSuffix          string   `mapstructure:"output_suffix"`           // 输出文件名后缀
	BilingualSeparator    string   `mapstructure:"bilingual_separator"`     // 双语模式下目录项的分隔符
	NamespaceSessions     bool     `mapstructure:"namespace_sessions"`      // 每次调用使用独立的临时子目录
	KeepIntermediateFiles bool     `mapstructure:"keep_intermediate_files"` // 是否保留中间文件（src.json 等）
	SkipPatterns          []string `mapstructure:"skip_patterns"`           // 不需要翻译的文本模式
	Concurrency           int      `mapstructure:"concurrency"`             // 并行处理的文档数

	SourceLang   string      `mapstructure:"source_lang"`
	TargetLang   string      `mapstructure:"target_lang"`
	Provider     string      `mapstructure:"provider"`      // identity、glossary 或 openai
	GlossaryPath string      `mapstructure:"glossary_path"` // 词汇表文件路径
	Model        ModelConfig `mapstructure:"model"`

	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`   // 控制台友好的日志输出
	LogLevel string `mapstructure:"log_level"` // 基础日志级别
	LogFile  string `mapstructure:"log_file"`  // 额外写入的日志文件
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		Mode:                  string(docx.ModeReplace),
		ResultDir:             "result",
		TempDir:               "temp",
		OutputSuffix:          "_translated",
		BilingualSeparator:    docx.DefaultBilingualSeparator,
		NamespaceSessions:     true,
		KeepIntermediateFiles: false,
		SkipPatterns:          []string{},
		Concurrency:           2,
		SourceLang:            "English",
		TargetLang:            "Chinese",
		Provider:              ProviderIdentity,
		Model: ModelConfig{
			ModelID:         "gpt-4o-mini",
			Temperature:     0.3,
			MaxOutputTokens: 2048,
			Timeout:         60,
		},
		LogLevel: "info",
	}
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("mode", d.Mode)
	v.SetDefault("result_dir", d.ResultDir)
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("output_suffix", d.OutputSuffix)
	v.SetDefault("bilingual_separator", d.BilingualSeparator)
	v.SetDefault("namespace_sessions", d.NamespaceSessions)
	v.SetDefault("keep_intermediate_files", d.KeepIntermediateFiles)
	v.SetDefault("skip_patterns", d.SkipPatterns)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("source_lang", d.SourceLang)
	v.SetDefault("target_lang", d.TargetLang)
	v.SetDefault("provider", d.Provider)
	v.SetDefault("glossary_path", "")

	// 模型默认配置
	v.SetDefault("model.model_id", d.Model.ModelID)
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.key", "")
	v.SetDefault("model.temperature", d.Model.Temperature)
	v.SetDefault("model.max_output_tokens", d.Model.MaxOutputTokens)
	v.SetDefault("model.timeout", d.Model.Timeout)

	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	if _, err := docx.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.OutputSuffix == "" {
		return fmt.Errorf("output_suffix must not be empty")
	}
	if c.ResultDir == "" || c.TempDir == "" {
		return fmt.Errorf("result_dir and temp_dir must be specified")
	}

	switch strings.ToLower(c.Provider) {
	case ProviderIdentity:
	case ProviderGlossary:
		if c.GlossaryPath == "" {
			return fmt.Errorf("provider %q requires glossary_path", c.Provider)
		}
	case ProviderOpenAI:
		if c.Model.Key == "" {
			return fmt.Errorf("provider %q requires model.key", c.Provider)
		}
		if c.Model.ModelID == "" {
			return fmt.Errorf("provider %q requires model.model_id", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q: must be %s, %s or %s",
			c.Provider, ProviderIdentity, ProviderGlossary, ProviderOpenAI)
	}
	return nil
}

// DocxMode 返回解析后的回写模式
func (c *Config) DocxMode() docx.Mode {
	mode, err := docx.ParseMode(c.Mode)
	if err != nil {
		return docx.ModeReplace
	}
	return mode
}

// structToMap 将结构体转换为map
func structToMap(config *Config) map[string]interface{} {
	return map[string]interface{}{
		"mode":                    config.Mode,
		"result_dir":              config.ResultDir,
		"temp_dir":                config.TempDir,
		"output_suffix":           config.OutputSuffix,
		"bilingual_separator":     config.BilingualSeparator,
		"namespace_sessions":      config.NamespaceSessions,
		"keep_intermediate_files": config.KeepIntermediateFiles,
		"skip_patterns":           config.SkipPatterns,
		"concurrency":             config.Concurrency,
		"source_lang":             config.SourceLang,
		"target_lang":             config.TargetLang,
		"provider":                config.Provider,
		"glossary_path":           config.GlossaryPath,
		"model": map[string]interface{}{
			"model_id":          config.Model.ModelID,
			"base_url":          config.Model.BaseURL,
			"key":               config.Model.Key,
			"temperature":       config.Model.Temperature,
			"max_output_tokens": config.Model.MaxOutputTokens,
			"timeout":           config.Model.Timeout,
		},
		"debug":     config.Debug,
		"verbose":   config.Verbose,
		"log_level": config.LogLevel,
		"log_file":  config.LogFile,
	}
}
