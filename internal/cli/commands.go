package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/docx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// extract 命令的标志
	extractOut string
)

// newExtractCommand 创建 extract 命令
func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <document.docx>",
		Short: "抽取文档中的文本单元并写入 JSON 文件",
		Long: `抽取文档中的文本单元并写入 JSON 文件。

默认写入工作目录 <temp_dir>/<文件名>/src.json，也可以通过 --out 指定路径。
输出文件可交给外部翻译工具处理，再用 restructure 和 reinsert 命令写回。`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}
	cmd.Flags().StringVarP(&extractOut, "out", "o", "", "单元文件输出路径")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, log, done, err := setup(cmd)
	if err != nil {
		return err
	}
	defer done()

	source := args[0]
	eligible, err := docx.NewPatternEligibility(docx.DefaultEligibility, cfg.SkipPatterns)
	if err != nil {
		return err
	}
	extractor := docx.NewExtractor(log, eligible)

	var (
		units []docx.TextUnit
		out   string
	)
	if extractOut != "" {
		units, err = extractor.ExtractUnits(source)
		if err != nil {
			return err
		}
		if err := docx.WriteUnits(extractOut, units); err != nil {
			return err
		}
		out = extractOut
	} else {
		ws, err := docx.NewWorkspace(cfg.TempDir, source, cfg.NamespaceSessions)
		if err != nil {
			return err
		}
		units, err = extractor.Extract(source, ws)
		if err != nil {
			return err
		}
		out = ws.SourceUnitsPath()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "已抽取 %s 个单元 -> %s\n",
		color.New(color.FgGreen, color.Bold).Sprint(len(units)), out)
	return nil
}

// newRestructureCommand 创建 restructure 命令
func newRestructureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restructure <src.json> <translated.json>",
		Short: "按源单元规整外部翻译结果",
		Long: `按源单元规整外部翻译结果，原地改写译文文件。

结果中每个有译文的源单元对应一条 {id, count_src, type, translated} 记录，
顺序与源单元一致；缺少 id 的记录按 count_src 匹配。`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, done, err := setup(cmd)
			if err != nil {
				return err
			}
			defer done()

			if err := docx.RestructureFile(args[0], args[1]); err != nil {
				return err
			}
			translated, err := docx.ReadTranslated(args[1])
			if err != nil {
				return err
			}
			log.Info("译文已规整", zap.String("file", args[1]), zap.Int("records", len(translated)))
			fmt.Fprintf(cmd.OutOrStdout(), "已规整 %d 条译文 -> %s\n", len(translated), args[1])
			return nil
		},
	}
}

// newReinsertCommand 创建 reinsert 命令
func newReinsertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reinsert <document.docx> <src.json> <translated.json>",
		Short: "将译文写回文档",
		Long: `将译文写回文档，输出到 <result_dir>/<文件名><output_suffix>.docx。

无法定位的单元和缺少译文的单元会被跳过并记录警告，原文保持不变。`,
		Args: cobra.ExactArgs(3),
		RunE: runReinsert,
	}
}

func runReinsert(cmd *cobra.Command, args []string) error {
	cfg, log, done, err := setup(cmd)
	if err != nil {
		return err
	}
	defer done()

	source := args[0]
	original, err := docx.ReadUnits(args[1])
	if err != nil {
		return err
	}
	translated, err := docx.ReadTranslated(args[2])
	if err != nil {
		return err
	}

	policy, err := docx.NewPolicy(cfg.DocxMode(), cfg.BilingualSeparator)
	if err != nil {
		return err
	}
	reinserter := docx.NewReinserter(log, policy,
		docx.WithResultDir(cfg.ResultDir),
		docx.WithOutputSuffix(cfg.OutputSuffix))

	ws, err := docx.NewWorkspace(cfg.TempDir, source, cfg.NamespaceSessions)
	if err != nil {
		return err
	}
	if !cfg.KeepIntermediateFiles {
		defer func() {
			if err := ws.Cleanup(); err != nil {
				log.Warn("清理临时目录失败", zap.String("dir", ws.Root), zap.Error(err))
			}
		}()
	}

	report, err := reinserter.Reinsert(source, original, translated, ws)
	if err != nil {
		return err
	}
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *docx.Report) {
	w := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "输出文件: %s\n", report.OutputPath)
	fmt.Fprintf(w, "单元: %d  已写回: %s  缺少译文: %s  无法定位: %s\n",
		report.Total,
		green(report.Applied),
		yellow(report.Missing),
		red(len(report.Failed)))
	for _, f := range report.Failed {
		fmt.Fprintf(w, "  %s\n", red(f.Error()))
	}
}

// newInitConfigCommand 创建 init-config 命令
func newInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "写出默认配置文件",
		Long:  `写出默认配置文件，未指定路径时写入 $HOME/` + config.ConfigName + `.yaml。`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.SaveConfig(config.NewDefaultConfig(), path); err != nil {
				return fmt.Errorf("保存配置失败: %w", err)
			}
			if path == "" {
				path = "$HOME/" + config.ConfigName + ".yaml"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "默认配置已写入 %s\n", path)
			return nil
		},
	}
}
