package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Totals 批量处理的汇总
type Totals struct {
	Documents  int
	Succeeded  int
	Units      int
	Translated int
	Missing    int
	Unresolved int
}

// Summarize 汇总多个文档的结果
func Summarize(results []*Result) Totals {
	var t Totals
	for _, r := range results {
		if r == nil {
			continue
		}
		t.Documents++
		if r.Err == nil {
			t.Succeeded++
		}
		t.Units += r.Units
		t.Translated += r.Translated
		if r.Report != nil {
			t.Missing += r.Report.Missing
			t.Unresolved += len(r.Report.Failed)
		}
	}
	return t
}

// RenderSummary 以表格形式输出处理结果
func RenderSummary(w io.Writer, results []*Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"文档", "单元", "已翻译", "缺失", "无法定位", "耗时", "结果"})

	for _, r := range results {
		if r == nil {
			continue
		}
		missing, unresolved := 0, 0
		if r.Report != nil {
			missing = r.Report.Missing
			unresolved = len(r.Report.Failed)
		}
		outcome := r.Output
		if r.Err != nil {
			outcome = text.FgRed.Sprint(r.Err.Error())
		}
		tw.AppendRow(table.Row{
			filepath.Base(r.Source),
			r.Units,
			r.Translated,
			missing,
			unresolved,
			r.Duration.Round(time.Millisecond),
			outcome,
		})
	}

	totals := Summarize(results)
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d/%d", totals.Succeeded, totals.Documents),
		totals.Units,
		totals.Translated,
		totals.Missing,
		totals.Unresolved,
		"",
		"",
	})
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
