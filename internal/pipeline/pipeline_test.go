package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/docx"
	"github.com/nerdneilsfield/go-docx-translator/internal/progress"
	"github.com/nerdneilsfield/go-docx-translator/internal/translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBody = `<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Goodbye</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>2024</w:t></w:r></w:p>`

func part(root, content string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:` + root + ` xmlns:w="` + docx.WordprocessingMLNamespace + `">` + content + `</w:` + root + `>`
}

func writeTestDocx(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := [][2]string{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types/>`},
		{docx.MainPartName, part("document", `<w:body>`+testBody+`</w:body>`)},
		{"word/footer1.xml", part("ftr", `<w:p><w:r><w:t>Page</w:t></w:r></w:p>`)},
	}
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = io.WriteString(w, e[1])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func readPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func testConfig(dir string) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.TempDir = filepath.Join(dir, "temp")
	cfg.ResultDir = filepath.Join(dir, "result")
	return cfg
}

func prefixTranslator(fail ...string) translator.Translator {
	return translator.Func(func(_ context.Context, text string) (string, error) {
		for _, f := range fail {
			if text == f {
				return "", errors.New("backend unavailable")
			}
		}
		return "FR:" + text, nil
	})
}

type stageRecorder struct {
	mu     sync.Mutex
	stages map[string][]progress.Stage
	queue  []int
	last   [2]int
}

func newStageRecorder() *stageRecorder {
	return &stageRecorder{stages: make(map[string][]progress.Stage)}
}

func (r *stageRecorder) ReportStage(docID string, stage progress.Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[docID] = append(r.stages[docID], stage)
}

func (r *stageRecorder) ReportProgress(_ string, done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = [2]int{done, total}
}

func (r *stageRecorder) ReportQueue(pending int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, pending)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	src := writeTestDocx(t, dir, "memo.docx")
	cfg := testConfig(dir)
	rec := newStageRecorder()

	p, err := New(cfg, prefixTranslator(), zap.NewNop(), WithObserver(rec))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.ResultDir, "memo_translated.docx"), res.Output)
	assert.Equal(t, 3, res.Units)
	assert.Equal(t, 3, res.Translated)
	assert.Zero(t, res.Failed)
	require.NotNil(t, res.Report)
	assert.Equal(t, 3, res.Report.Applied)

	body := readPart(t, res.Output, docx.MainPartName)
	assert.Contains(t, body, "FR:Hello world")
	assert.Contains(t, body, "FR:Goodbye")
	assert.Contains(t, body, ">2024<")
	assert.Contains(t, readPart(t, res.Output, "word/footer1.xml"), "FR:Page")

	assert.Equal(t, []progress.Stage{
		progress.StageExtract,
		progress.StageTranslate,
		progress.StageRestructure,
		progress.StageReinsert,
		progress.StageDone,
	}, rec.stages[src])
	assert.Equal(t, [2]int{3, 3}, rec.last)

	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace is removed after the run")
}

func TestRunBilingual(t *testing.T) {
	dir := t.TempDir()
	src := writeTestDocx(t, dir, "memo.docx")
	cfg := testConfig(dir)
	cfg.Mode = string(docx.ModeBilingual)

	p, err := New(cfg, prefixTranslator(), zap.NewNop())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)

	body := readPart(t, res.Output, docx.MainPartName)
	assert.Contains(t, body, ">Hello world<")
	assert.Contains(t, body, ">FR:Hello world<")
}

func TestRunKeepsUntranslatedUnits(t *testing.T) {
	dir := t.TempDir()
	src := writeTestDocx(t, dir, "memo.docx")
	cfg := testConfig(dir)

	p, err := New(cfg, prefixTranslator("Goodbye"), zap.NewNop())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Translated)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Report.Missing)

	body := readPart(t, res.Output, docx.MainPartName)
	assert.Contains(t, body, ">Goodbye<")
	assert.NotContains(t, body, "FR:Goodbye")
}

func TestRunKeepIntermediateFiles(t *testing.T) {
	dir := t.TempDir()
	src := writeTestDocx(t, dir, "memo.docx")
	cfg := testConfig(dir)
	cfg.KeepIntermediateFiles = true
	cfg.NamespaceSessions = false

	p, err := New(cfg, prefixTranslator(), zap.NewNop())
	require.NoError(t, err)
	_, err = p.Run(context.Background(), src)
	require.NoError(t, err)

	ws := filepath.Join(cfg.TempDir, "memo")
	units, err := docx.ReadUnits(filepath.Join(ws, "src.json"))
	require.NoError(t, err)
	assert.Len(t, units, 3)

	translated, err := docx.ReadTranslated(filepath.Join(ws, "translated.json"))
	require.NoError(t, err)
	require.Len(t, translated, 3)
	assert.Equal(t, "FR:Hello world", *translated[0].Translated)
	assert.Equal(t, 1, *translated[0].CountSrc)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	rec := newStageRecorder()

	p, err := New(cfg, prefixTranslator(), zap.NewNop(), WithObserver(rec))
	require.NoError(t, err)

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.docx")
		res, err := p.Run(context.Background(), missing)
		assert.Error(t, err)
		assert.Equal(t, err, res.Err)
		assert.Equal(t, progress.StageFailed, rec.stages[missing][len(rec.stages[missing])-1])
	})

	t.Run("cancelled", func(t *testing.T) {
		src := writeTestDocx(t, dir, "cancel.docx")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Run(ctx, src)
		assert.ErrorIs(t, err, context.Canceled)
		_, statErr := os.Stat(filepath.Join(cfg.ResultDir, "cancel_translated.docx"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestNewValidation(t *testing.T) {
	cfg := config.NewDefaultConfig()

	_, err := New(nil, translator.Identity{}, nil)
	assert.Error(t, err)
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)

	bad := config.NewDefaultConfig()
	bad.SkipPatterns = []string{"("}
	_, err = New(bad, translator.Identity{}, nil)
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Concurrency = 2
	rec := newStageRecorder()

	paths := []string{
		writeTestDocx(t, dir, "a.docx"),
		filepath.Join(dir, "missing.docx"),
		writeTestDocx(t, dir, "c.docx"),
	}

	p, err := New(cfg, prefixTranslator(), zap.NewNop(), WithObserver(rec))
	require.NoError(t, err)

	results := p.RunBatch(context.Background(), paths)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Source)
	}
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	assert.Equal(t, 3, rec.queue[0])
	assert.Equal(t, 0, rec.queue[len(rec.queue)-1])

	totals := Summarize(results)
	assert.Equal(t, Totals{Documents: 3, Succeeded: 2, Units: 6, Translated: 6}, totals)

	var buf bytes.Buffer
	RenderSummary(&buf, results)
	out := buf.String()
	assert.Contains(t, out, "a.docx")
	assert.Contains(t, out, "missing.docx")
	assert.Contains(t, out, "2/3")
	assert.True(t, strings.Contains(out, "a_translated.docx"))
}

func TestRunBatchEmpty(t *testing.T) {
	p, err := New(config.NewDefaultConfig(), translator.Identity{}, nil)
	require.NoError(t, err)
	assert.Empty(t, p.RunBatch(context.Background(), nil))
}
