package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/nerdneilsfield/go-docx-translator/internal/docx"
	"github.com/spf13/cobra"
)

var (
	// inspect 命令的标志
	inspectWidth int
	inspectAll   bool
)

// newInspectCommand 创建 inspect 命令
func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <document.docx>",
		Short: "以表格形式列出文档的文本单元，不写任何文件",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	cmd.Flags().IntVarP(&inspectWidth, "width", "w", 60, "文本列的最大显示宽度")
	cmd.Flags().BoolVar(&inspectAll, "all", false, "不使用跳过规则，列出所有非空文本")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, log, done, err := setup(cmd)
	if err != nil {
		return err
	}
	defer done()

	eligible := docx.Eligibility(func(text string) bool { return strings.TrimSpace(text) != "" })
	if !inspectAll {
		eligible, err = docx.NewPatternEligibility(docx.DefaultEligibility, cfg.SkipPatterns)
		if err != nil {
			return err
		}
	}

	units, err := docx.NewExtractor(log, eligible).ExtractUnits(args[0])
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"ID", "类型", "地址", "文本"})
	for _, u := range units {
		tw.AppendRow(table.Row{u.ID, u.Type(), describeAddress(u.Address), displayText(u.Text(), inspectWidth)})
	}
	tw.AppendFooter(table.Row{"", "", "合计", len(units)})
	tw.SetStyle(table.StyleLight)
	tw.Render()
	return nil
}

// displayText 把换行显示为 ↵，并按显示宽度截断（CJK 字符占两列）
func displayText(s string, width int) string {
	s = strings.NewReplacer("\r\n", "↵", "\n", "↵", "\r", "↵", "\t", " ").Replace(s)
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func describeAddress(addr docx.Address) string {
	switch a := addr.(type) {
	case docx.TOCTextNodeAddress:
		return fmt.Sprintf("block %d / run %d / t %d", a.ElementIndex, a.RunIndex, a.TextIndex)
	case docx.ParagraphAddress:
		s := fmt.Sprintf("block %d", a.ElementIndex)
		if a.IsHeading {
			s += " heading"
		}
		if a.HasNumbering {
			s += " numbered"
		}
		return s
	case docx.TableCellAddress:
		return fmt.Sprintf("table %d / r%d c%d", a.TableIndex, a.Row, a.Col)
	case docx.HeaderFooterAddress:
		return fmt.Sprintf("%s / p %d", a.Number(), a.ParagraphIndex)
	case docx.HeaderFooterTableCellAddress:
		return fmt.Sprintf("%s / table %d / r%d c%d", a.Number(), a.TableIndex, a.Row, a.Col)
	}
	return "?"
}
