package cli

import (
	"fmt"

	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// 命令行标志变量
	cfgFile      string
	debugMode    bool
	verboseMode  bool // 控制台友好的日志输出
	mode         string
	resultDir    string
	provider     string
	glossaryPath string
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docx-translator",
		Short: "Word 文档翻译工具，抽取文本单元并将译文写回原文档",
		Long: `Word 文档翻译工具，按文档顺序抽取段落、表格单元格、目录项以及页眉页脚中的文本单元，
交给翻译后端翻译，再按原地址写回，尽量保留原有格式。

回写模式:
  - replace: 用译文替换原文
  - bilingual: 保留原文并在其后追加译文

翻译提供商:
  - identity: 原样返回（用于检查回写流程）
  - glossary: TOML 词汇表精确匹配
  - openai: OpenAI 兼容的对话模型`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		newExtractCommand(),
		newRestructureCommand(),
		newReinsertCommand(),
		newTranslateCommand(),
		newInspectCommand(),
		newInitConfigCommand(),
	)

	return rootCmd
}

func addGlobalFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试模式")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "显示详细日志")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "回写模式 (replace, bilingual)")
	rootCmd.PersistentFlags().StringVar(&resultDir, "result-dir", "", "输出目录")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "翻译提供商 (identity, glossary, openai)")
	rootCmd.PersistentFlags().StringVar(&glossaryPath, "glossary", "", "词汇表文件路径")
}

// loadConfig 加载配置并应用命令行覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	updateConfigFromFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}
	return cfg, nil
}

func updateConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = debugMode
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verboseMode
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("result-dir") {
		cfg.ResultDir = resultDir
	}
	if flags.Changed("provider") {
		cfg.Provider = provider
	}
	if flags.Changed("glossary") {
		cfg.GlossaryPath = glossaryPath
	}
}

// newLogger 根据配置创建日志记录器，返回的函数用于刷新并关闭日志
func newLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	log := logger.NewLoggerWithLevel(level, cfg.Verbose)

	closeFile := func() error { return nil }
	if cfg.LogFile != "" {
		fileLog, closer, err := logger.NewFileLogger(log, cfg.LogFile, cfg.Debug)
		if err != nil {
			return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		log, closeFile = fileLog, closer
	}

	return log, func() {
		_ = log.Sync()
		_ = closeFile()
	}, nil
}

// setup 加载配置并创建日志记录器
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, done, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug("配置已加载",
		zap.String("mode", cfg.Mode),
		zap.String("provider", cfg.Provider),
		zap.String("result_dir", cfg.ResultDir))
	return cfg, log, done, nil
}
