package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/docx"
	"github.com/nerdneilsfield/go-docx-translator/internal/progress"
	"github.com/nerdneilsfield/go-docx-translator/internal/translator"
	"go.uber.org/zap"
)

// Pipeline 单文档翻译流程：抽取 -> 翻译 -> 规整 -> 回写
type Pipeline struct {
	cfg        *config.Config
	log        *zap.Logger
	translator translator.Translator
	observer   progress.Observer
	extractor  *docx.Extractor
	reinserter *docx.Reinserter
}

// Option 流程选项
type Option func(*Pipeline)

// WithObserver 设置进度观察者
func WithObserver(o progress.Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// Result 单个文档的处理结果
type Result struct {
	Source     string
	Output     string
	Units      int // 抽取的单元数
	Translated int // 翻译成功的单元数
	Failed     int // 翻译失败的单元数
	Report     *docx.Report
	Duration   time.Duration
	Err        error
}

// New 创建翻译流程
func New(cfg *config.Config, tr translator.Translator, log *zap.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if tr == nil {
		return nil, errors.New("translator is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	eligible, err := docx.NewPatternEligibility(docx.DefaultEligibility, cfg.SkipPatterns)
	if err != nil {
		return nil, err
	}
	policy, err := docx.NewPolicy(cfg.DocxMode(), cfg.BilingualSeparator)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:        cfg,
		log:        log,
		translator: tr,
		observer:   progress.NopObserver{},
		extractor:  docx.NewExtractor(log, eligible),
		reinserter: docx.NewReinserter(log, policy,
			docx.WithResultDir(cfg.ResultDir),
			docx.WithOutputSuffix(cfg.OutputSuffix)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run 处理单个文档。出错时返回的 Result 仍然包含已完成阶段的统计
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	res := &Result{Source: path}
	err := p.run(ctx, path, res)
	res.Duration = time.Since(start)
	res.Err = err

	if err != nil {
		p.observer.ReportStage(path, progress.StageFailed)
		p.log.Error("文档处理失败", zap.String("file", path), zap.Error(err))
		return res, err
	}
	p.observer.ReportStage(path, progress.StageDone)
	p.log.Info("文档处理完成",
		zap.String("file", path),
		zap.String("output", res.Output),
		zap.Int("units", res.Units),
		zap.Int("translated", res.Translated),
		zap.Duration("耗时", res.Duration))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, path string, res *Result) error {
	ws, err := docx.NewWorkspace(p.cfg.TempDir, path, p.cfg.NamespaceSessions)
	if err != nil {
		return err
	}
	if !p.cfg.KeepIntermediateFiles {
		defer func() {
			if err := ws.Cleanup(); err != nil {
				p.log.Warn("清理临时目录失败", zap.String("dir", ws.Root), zap.Error(err))
			}
		}()
	}

	p.observer.ReportStage(path, progress.StageExtract)
	units, err := p.extractor.Extract(path, ws)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	res.Units = len(units)

	p.observer.ReportStage(path, progress.StageTranslate)
	translated, err := p.translateUnits(ctx, path, units, res)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	if err := docx.WriteTranslated(ws.TranslatedUnitsPath(), translated); err != nil {
		return fmt.Errorf("write translated units: %w", err)
	}

	p.observer.ReportStage(path, progress.StageRestructure)
	if err := docx.RestructureFile(ws.SourceUnitsPath(), ws.TranslatedUnitsPath()); err != nil {
		return fmt.Errorf("restructure: %w", err)
	}
	restructured, err := docx.ReadTranslated(ws.TranslatedUnitsPath())
	if err != nil {
		return fmt.Errorf("read translated units: %w", err)
	}

	p.observer.ReportStage(path, progress.StageReinsert)
	report, err := p.reinserter.Reinsert(path, units, restructured, ws)
	if err != nil {
		return fmt.Errorf("reinsert: %w", err)
	}
	res.Report = report
	res.Output = report.OutputPath
	return nil
}

// translateUnits 逐个翻译单元。单个单元失败只记录警告，
// 该单元在回写时按缺失处理；上下文取消则终止整个文档
func (p *Pipeline) translateUnits(ctx context.Context, docID string, units []docx.TextUnit, res *Result) ([]docx.TranslatedUnit, error) {
	counter := progress.NewCounter(p.observer, docID, len(units), progressStep(len(units)))
	out := make([]docx.TranslatedUnit, 0, len(units))

	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := p.translator.Translate(ctx, u.Text())
		counter.Add(1)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.Failed++
			p.log.Warn("单元翻译失败",
				zap.Int("id", u.ID),
				zap.String("type", string(u.Type())),
				zap.Error(err))
			continue
		}
		res.Translated++
		out = append(out, docx.NewTranslatedUnit(u, docx.Escape(text)))
	}
	return out, nil
}

// progressStep 约每 5% 报告一次进度
func progressStep(total int) int {
	if step := total / 20; step > 1 {
		return step
	}
	return 1
}

// RunBatch 并发处理多个文档，并发数由 concurrency 配置限制。
// 返回结果与输入顺序一致；单个文档失败不影响其它文档
func (p *Pipeline) RunBatch(ctx context.Context, paths []string) []*Result {
	results := make([]*Result, len(paths))
	if len(paths) == 0 {
		return results
	}

	concurrency := p.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var queueMu sync.Mutex
	pending := len(paths)
	p.observer.ReportQueue(pending)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, path := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()

			// 获取信号量
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				results[idx] = &Result{Source: path, Err: err}
			} else {
				results[idx], _ = p.Run(ctx, path)
			}

			queueMu.Lock()
			pending--
			p.observer.ReportQueue(pending)
			queueMu.Unlock()
		}(i, path)
	}

	wg.Wait()
	return results
}
