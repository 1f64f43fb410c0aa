package cli_test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerdneilsfield/go-docx-translator/internal/cli"
	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="` + docx.WordprocessingMLNamespace + `"><w:body>` +
	`<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>` +
	`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
	`</w:body></w:document>`

type env struct {
	dir       string
	config    string
	resultDir string
	doc       string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		dir:       dir,
		config:    filepath.Join(dir, "config.yaml"),
		resultDir: filepath.Join(dir, "result"),
		doc:       filepath.Join(dir, "report.docx"),
	}
	cfg := "temp_dir: " + filepath.Join(dir, "temp") + "\nresult_dir: " + e.resultDir + "\n"
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))

	f, err := os.Create(e.doc)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types/>`,
		docx.MainPartName:     documentXML,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return e
}

// run 执行命令并返回标准输出
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand("1.2.3", "abc123", "2024-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mainPart(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == docx.MainPartName {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatal("main part missing")
	return ""
}

// TestCLIHelp 测试帮助信息
func TestCLIHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Word 文档翻译工具")
	assert.Contains(t, out, "docx-translator")
	for _, sub := range []string{"extract", "restructure", "reinsert", "translate", "inspect", "init-config"} {
		assert.Contains(t, out, sub)
	}
	assert.Contains(t, out, "--mode")
}

// TestCLIVersion 测试版本信息
func TestCLIVersion(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "commit abc123")
	assert.Contains(t, out, "built 2024-01-01")
}

// TestCLIMissingArgs 测试缺少参数的情况
func TestCLIMissingArgs(t *testing.T) {
	_, err := run(t, "extract")
	assert.Error(t, err)

	_, err = run(t, "reinsert", "a.docx")
	assert.Error(t, err)
}

func TestCLIInvalidMode(t *testing.T) {
	e := newEnv(t)
	_, err := run(t, "--config", e.config, "--mode", "interleave", "inspect", e.doc)
	assert.Error(t, err)
}

func TestCLIInspect(t *testing.T) {
	e := newEnv(t)
	out, err := run(t, "--config", e.config, "inspect", e.doc)
	require.NoError(t, err)

	assert.Contains(t, out, "Hello world")
	assert.Contains(t, out, "table 1 / r0 c0")
	assert.Contains(t, out, "合计")
	_, statErr := os.Stat(filepath.Join(e.dir, "temp"))
	assert.True(t, os.IsNotExist(statErr), "inspect writes nothing")
}

// TestCLIManualFlow 测试 extract -> 外部翻译 -> restructure -> reinsert
func TestCLIManualFlow(t *testing.T) {
	e := newEnv(t)
	srcPath := filepath.Join(e.dir, "src.json")
	translatedPath := filepath.Join(e.dir, "translated.json")

	out, err := run(t, "--config", e.config, "extract", e.doc, "--out", srcPath)
	require.NoError(t, err)
	assert.Contains(t, out, srcPath)

	units, err := docx.ReadUnits(srcPath)
	require.NoError(t, err)
	require.NotEmpty(t, units)

	// 外部翻译工具只返回 count_src 和译文，顺序打乱
	var records []docx.TranslatedUnit
	for i := len(units) - 1; i >= 0; i-- {
		id := units[i].ID
		value := "DE:" + units[i].Value
		records = append(records, docx.TranslatedUnit{CountSrc: &id, Translated: &value})
	}
	require.NoError(t, docx.WriteTranslated(translatedPath, records))

	_, err = run(t, "--config", e.config, "restructure", srcPath, translatedPath)
	require.NoError(t, err)
	restructured, err := docx.ReadTranslated(translatedPath)
	require.NoError(t, err)
	require.Len(t, restructured, len(units))
	assert.Equal(t, units[0].ID, *restructured[0].ID)

	out, err = run(t, "--config", e.config, "--mode", "bilingual", "reinsert", e.doc, srcPath, translatedPath)
	require.NoError(t, err)
	output := filepath.Join(e.resultDir, "report_translated.docx")
	assert.Contains(t, out, output)

	body := mainPart(t, output)
	assert.Contains(t, body, ">Hello world<")
	assert.Contains(t, body, ">DE:Hello world<")
	assert.Contains(t, body, ">DE:Name<")
}

func TestCLITranslate(t *testing.T) {
	e := newEnv(t)
	out, err := run(t, "--config", e.config, "translate", "--no-progress", e.doc)
	require.NoError(t, err)

	assert.Contains(t, out, "report.docx")
	assert.Contains(t, out, "全部 1 个文档翻译完成")
	assert.FileExists(t, filepath.Join(e.resultDir, "report_translated.docx"))
}

func TestCLITranslateWithGlossary(t *testing.T) {
	e := newEnv(t)
	glossary := filepath.Join(e.dir, "glossary.toml")
	content := "source_lang = \"English\"\ntarget_lang = \"German\"\n[translations]\n\"Hello world\" = \"Hallo Welt\"\n"
	require.NoError(t, os.WriteFile(glossary, []byte(content), 0o644))

	_, err := run(t, "--config", e.config, "--glossary", glossary, "translate", "--no-progress", e.doc)
	require.NoError(t, err)

	body := mainPart(t, filepath.Join(e.resultDir, "report_translated.docx"))
	assert.Contains(t, body, ">Hallo Welt<")
	assert.Contains(t, body, ">Name<")
}

func TestCLITranslateFailure(t *testing.T) {
	e := newEnv(t)
	out, err := run(t, "--config", e.config, "translate", "--no-progress", e.doc, filepath.Join(e.dir, "missing.docx"))
	assert.Error(t, err)
	assert.Contains(t, out, "1 个文档处理失败")
	assert.FileExists(t, filepath.Join(e.resultDir, "report_translated.docx"))
}

func TestCLIInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.yaml")
	out, err := run(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), cfg)
}
