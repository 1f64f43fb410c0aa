package translator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIdentity(t *testing.T) {
	out, err := Identity{}.Translate(context.Background(), "Line one\nLine two")
	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two", out)
}

func TestChain(t *testing.T) {
	g := NewGlossary(config.NewGlossary("English", "German", map[string]string{
		"Confidential": "Vertraulich",
	}))
	upper := Func(func(_ context.Context, text string) (string, error) {
		return "DE:" + text, nil
	})
	chain := Chain{g, upper}

	out, err := chain.Translate(context.Background(), "Confidential")
	require.NoError(t, err)
	assert.Equal(t, "Vertraulich", out)

	out, err = chain.Translate(context.Background(), "Draft")
	require.NoError(t, err)
	assert.Equal(t, "DE:Draft", out)

	assert.Equal(t, "glossary+func", chain.Name())

	_, err = Chain{g}.Translate(context.Background(), "Draft")
	assert.ErrorIs(t, err, ErrNoTranslation)
}

func TestChainStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var called bool
	chain := Chain{
		Func(func(context.Context, string) (string, error) { return "", boom }),
		Func(func(context.Context, string) (string, error) { called = true; return "x", nil }),
	}
	_, err := chain.Translate(context.Background(), "text")
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestCached(t *testing.T) {
	var calls atomic.Int32
	c := NewCached(Func(func(_ context.Context, text string) (string, error) {
		calls.Add(1)
		return "FR:" + text, nil
	}))

	for i := 0; i < 3; i++ {
		out, err := c.Translate(context.Background(), "Page")
		require.NoError(t, err)
		assert.Equal(t, "FR:Page", out)
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	var calls int
	c := NewCached(Func(func(context.Context, string) (string, error) {
		calls++
		if calls == 1 {
			return "", ErrRateLimited
		}
		return "ok", nil
	}))

	_, err := c.Translate(context.Background(), "a")
	assert.ErrorIs(t, err, ErrRateLimited)
	out, err := c.Translate(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestNew(t *testing.T) {
	log := zap.NewNop()

	t.Run("identity", func(t *testing.T) {
		tr, err := New(config.NewDefaultConfig(), log)
		require.NoError(t, err)
		assert.Equal(t, "identity", tr.Name())
	})

	t.Run("glossary before fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "g.toml")
		content := "source_lang = \"English\"\ntarget_lang = \"German\"\n[translations]\nPage = \"Seite\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg := config.NewDefaultConfig()
		cfg.GlossaryPath = path
		tr, err := New(cfg, log)
		require.NoError(t, err)
		assert.Equal(t, "glossary+identity", tr.Name())

		out, err := tr.Translate(context.Background(), "Page")
		require.NoError(t, err)
		assert.Equal(t, "Seite", out)
		out, err = tr.Translate(context.Background(), "Other")
		require.NoError(t, err)
		assert.Equal(t, "Other", out)
	})

	t.Run("glossary provider needs a path", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.Provider = config.ProviderGlossary
		_, err := New(cfg, log)
		assert.Error(t, err)
	})

	t.Run("openai without key", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.Provider = config.ProviderOpenAI
		_, err := New(cfg, log)
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.Provider = "deepl"
		_, err := New(cfg, log)
		assert.Error(t, err)
	})
}
