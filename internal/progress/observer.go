package progress

import "sync"

// Stage 文档处理阶段
type Stage string

const (
	StageExtract     Stage = "extract"
	StageTranslate   Stage = "translate"
	StageRestructure Stage = "restructure"
	StageReinsert    Stage = "reinsert"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Observer 接收编排器的进度报告。实现必须是并发安全的，
// 批量模式下多个文档会同时报告。
type Observer interface {
	// ReportStage 报告文档进入新阶段
	ReportStage(docID string, stage Stage)
	// ReportProgress 报告翻译阶段已完成的单元数
	ReportProgress(docID string, done, total int)
	// ReportQueue 报告等待处理的文档数
	ReportQueue(pending int)
}

// NopObserver 忽略所有报告
type NopObserver struct{}

func (NopObserver) ReportStage(string, Stage)      {}
func (NopObserver) ReportProgress(string, int, int) {}
func (NopObserver) ReportQueue(int)                 {}

// Multi 把报告转发给多个观察者
type Multi []Observer

func (m Multi) ReportStage(docID string, stage Stage) {
	for _, o := range m {
		o.ReportStage(docID, stage)
	}
}

func (m Multi) ReportProgress(docID string, done, total int) {
	for _, o := range m {
		o.ReportProgress(docID, done, total)
	}
}

func (m Multi) ReportQueue(pending int) {
	for _, o := range m {
		o.ReportQueue(pending)
	}
}

// Counter 统计翻译进度并按固定步长转发，避免逐单元刷新
type Counter struct {
	observer Observer
	docID    string
	total    int
	step     int

	mu   sync.Mutex
	done int
}

// NewCounter 创建计数器，step <= 0 时每个单元都报告
func NewCounter(observer Observer, docID string, total, step int) *Counter {
	if observer == nil {
		observer = NopObserver{}
	}
	if step <= 0 {
		step = 1
	}
	return &Counter{observer: observer, docID: docID, total: total, step: step}
}

// Add 记录 n 个已完成单元
func (c *Counter) Add(n int) {
	c.mu.Lock()
	c.done += n
	done := c.done
	c.mu.Unlock()

	if done%c.step == 0 || done >= c.total {
		c.observer.ReportProgress(c.docID, done, c.total)
	}
}

// Done 返回已完成单元数
func (c *Counter) Done() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
