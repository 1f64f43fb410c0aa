package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"go.uber.org/zap"
)

// ErrNoTranslation 表示翻译器没有给出译文（例如词汇表未命中），
// 由 Chain 用来切换到下一个翻译器
var ErrNoTranslation = errors.New("no translation available")

// Translator 单元翻译器接口
// 输入和输出都是已恢复换行符的纯文本，实现需要保留换行
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
	Name() string
}

// Func 把普通函数适配为 Translator
type Func func(ctx context.Context, text string) (string, error)

func (f Func) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

func (Func) Name() string { return "func" }

// Identity 原样返回文本，用于测试回写流程或离线处理
type Identity struct{}

func (Identity) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}

func (Identity) Name() string { return config.ProviderIdentity }

// Glossary 使用预定义翻译表进行精确匹配
type Glossary struct {
	glossary *config.Glossary
}

// NewGlossary 创建词汇表翻译器
func NewGlossary(g *config.Glossary) *Glossary {
	return &Glossary{glossary: g}
}

func (g *Glossary) Translate(_ context.Context, text string) (string, error) {
	if v, ok := g.glossary.Lookup(text); ok {
		return v, nil
	}
	return "", ErrNoTranslation
}

func (g *Glossary) Name() string { return config.ProviderGlossary }

// Chain 依次尝试多个翻译器，前一个返回 ErrNoTranslation 时使用下一个
type Chain []Translator

func (c Chain) Translate(ctx context.Context, text string) (string, error) {
	for _, t := range c {
		out, err := t.Translate(ctx, text)
		if errors.Is(err, ErrNoTranslation) {
			continue
		}
		return out, err
	}
	return "", ErrNoTranslation
}

func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, t := range c {
		names = append(names, t.Name())
	}
	return strings.Join(names, "+")
}

// New 根据配置创建翻译器。配置了词汇表时，词汇表总是优先于其它提供商
func New(cfg *config.Config, log *zap.Logger) (Translator, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var chain Chain
	if cfg.GlossaryPath != "" {
		g, err := config.LoadGlossary(cfg.GlossaryPath)
		if err != nil {
			return nil, err
		}
		log.Info("已加载词汇表",
			zap.String("path", cfg.GlossaryPath),
			zap.Int("entries", len(g.Translations)))
		chain = append(chain, NewGlossary(g))
	}

	switch strings.ToLower(cfg.Provider) {
	case config.ProviderIdentity:
		chain = append(chain, Identity{})
	case config.ProviderGlossary:
		if len(chain) == 0 {
			return nil, fmt.Errorf("provider %q requires glossary_path", cfg.Provider)
		}
	case config.ProviderOpenAI:
		client, err := NewOpenAI(cfg.Model, cfg.SourceLang, cfg.TargetLang, log)
		if err != nil {
			return nil, err
		}
		chain = append(chain, client)
	default:
		return nil, fmt.Errorf("不支持的翻译提供商: %s", cfg.Provider)
	}

	tr := NewCached(chain)
	log.Debug("翻译器已创建", zap.String("translator", tr.Name()))
	return tr, nil
}
