package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/go-docx-translator/internal/pipeline"
	"github.com/nerdneilsfield/go-docx-translator/internal/progress"
	"github.com/nerdneilsfield/go-docx-translator/internal/translator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// translate 命令的标志
	concurrency int
	noProgress  bool
	keepFiles   bool
)

// newTranslateCommand 创建 translate 命令
func newTranslateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <document.docx>...",
		Short: "翻译一个或多个文档",
		Long: `翻译一个或多个文档：抽取文本单元，调用翻译后端，规整译文并写回。

多个文档会并发处理，并发数由 --concurrency 或配置项 concurrency 控制。
单个文档失败不会影响其它文档，全部结束后输出汇总表。`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTranslate,
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "并发处理的文档数")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "不显示进度条")
	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "保留中间文件")
	return cmd
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, log, done, err := setup(cmd)
	if err != nil {
		return err
	}
	defer done()

	if cmd.Flags().Changed("concurrency") {
		if concurrency < 1 {
			return fmt.Errorf("concurrency must be at least 1")
		}
		cfg.Concurrency = concurrency
	}
	if cmd.Flags().Changed("keep-files") {
		cfg.KeepIntermediateFiles = keepFiles
	}

	tr, err := translator.New(cfg, log)
	if err != nil {
		return err
	}

	tracker := progress.NewTracker(log)
	observers := progress.Multi{tracker}
	var term *progress.Terminal
	if !noProgress {
		term, err = progress.NewTerminal(cmd.ErrOrStderr(), len(args))
		if err != nil {
			return err
		}
		observers = append(observers, term)
	}

	p, err := pipeline.New(cfg, tr, log, pipeline.WithObserver(observers))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.Info("开始翻译",
		zap.Int("documents", len(args)),
		zap.String("translator", tr.Name()),
		zap.String("mode", cfg.Mode),
		zap.Int("concurrency", cfg.Concurrency))
	results := p.RunBatch(ctx, args)

	if term != nil {
		_ = term.Stop()
	}

	w := cmd.OutOrStdout()
	pipeline.RenderSummary(w, results)

	totals := pipeline.Summarize(results)
	if totals.Succeeded < totals.Documents {
		color.New(color.FgRed, color.Bold).Fprintf(w, "%d 个文档处理失败\n", totals.Documents-totals.Succeeded)
		return fmt.Errorf("%d of %d documents failed", totals.Documents-totals.Succeeded, totals.Documents)
	}
	color.New(color.FgGreen, color.Bold).Fprintf(w, "全部 %d 个文档翻译完成\n", totals.Documents)
	return nil
}
