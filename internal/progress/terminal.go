package progress

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/pterm/pterm"
)

// Terminal 在终端显示批量处理进度条，每完成（或失败）一个文档前进一格
type Terminal struct {
	mu        sync.Mutex
	bar       *pterm.ProgressbarPrinter
	completed int
	failed    int
	pending   int
}

// NewTerminal 创建并启动进度条，documents 为文档总数
func NewTerminal(w io.Writer, documents int) (*Terminal, error) {
	if documents < 1 {
		documents = 1
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(documents).
		WithTitle("翻译进度").
		WithWriter(w).
		WithRemoveWhenDone(false).
		Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start progress bar: %w", err)
	}
	return &Terminal{bar: bar}, nil
}

func (t *Terminal) ReportStage(docID string, stage Stage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch stage {
	case StageDone:
		t.completed++
		t.bar.Increment()
	case StageFailed:
		t.completed++
		t.failed++
		t.bar.Increment()
	}
	t.bar.UpdateTitle(t.title(filepath.Base(docID), string(stage)))
}

func (t *Terminal) ReportProgress(docID string, done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bar.UpdateTitle(t.title(filepath.Base(docID), fmt.Sprintf("%d/%d", done, total)))
}

func (t *Terminal) ReportQueue(pending int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = pending
}

func (t *Terminal) title(doc, status string) string {
	title := pterm.Sprintf("%s [%s]", doc, status)
	if t.pending > 0 {
		title += pterm.Sprintf(" 队列: %d", t.pending)
	}
	if t.failed > 0 {
		title += pterm.Sprintf(" 失败: %d", t.failed)
	}
	return title
}

// Completed 返回已结束（成功或失败）的文档数
func (t *Terminal) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Stop 停止进度条
func (t *Terminal) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.bar.Stop()
	return err
}
