package progress

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tracker 进度跟踪器实现：记录每个文档的阶段与单元进度，并写入日志
type Tracker struct {
	sessions map[string]*Session
	pending  int
	mu       sync.RWMutex
	logger   *zap.Logger
}

// Session 单个文档的处理会话
type Session struct {
	DocID          string
	Stage          Stage
	StartTime      time.Time
	LastUpdateTime time.Time
	EndTime        time.Time

	// 统计信息
	TotalUnits int
	DoneUnits  int
}

// ProgressInfo 进度信息快照
type ProgressInfo struct {
	DocID               string
	Stage               Stage
	TotalUnits          int
	DoneUnits           int
	Progress            float64
	StartTime           time.Time
	Elapsed             time.Duration
	EstimatedCompletion time.Time
}

// NewTracker 创建进度跟踪器
func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// ReportStage 记录阶段变化，首次报告时创建会话
func (t *Tracker) ReportStage(docID string, stage Stage) {
	now := time.Now()

	t.mu.Lock()
	session, exists := t.sessions[docID]
	if !exists {
		session = &Session{DocID: docID, StartTime: now}
		t.sessions[docID] = session
	}
	session.Stage = stage
	session.LastUpdateTime = now
	if stage == StageDone || stage == StageFailed {
		session.EndTime = now
	}
	elapsed := now.Sub(session.StartTime)
	t.mu.Unlock()

	t.logger.Info("stage",
		zap.String("docID", docID),
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", elapsed))
}

// ReportProgress 更新单元进度
func (t *Tracker) ReportProgress(docID string, done, total int) {
	t.mu.Lock()
	session, exists := t.sessions[docID]
	if !exists {
		session = &Session{DocID: docID, StartTime: time.Now(), Stage: StageTranslate}
		t.sessions[docID] = session
	}
	session.DoneUnits = done
	session.TotalUnits = total
	session.LastUpdateTime = time.Now()
	t.mu.Unlock()

	t.logger.Debug("progress",
		zap.String("docID", docID),
		zap.Int("done", done),
		zap.Int("total", total))
}

// ReportQueue 记录队列深度
func (t *Tracker) ReportQueue(pending int) {
	t.mu.Lock()
	t.pending = pending
	t.mu.Unlock()

	t.logger.Debug("queue", zap.Int("pending", pending))
}

// Pending 返回最近报告的队列深度
func (t *Tracker) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending
}

// GetProgress 获取进度信息
func (t *Tracker) GetProgress(docID string) *ProgressInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	session, exists := t.sessions[docID]
	if !exists {
		return nil
	}
	return session.info()
}

// ListProgress 按开始时间列出所有会话
func (t *Tracker) ListProgress() []*ProgressInfo {
	t.mu.RLock()
	infos := make([]*ProgressInfo, 0, len(t.sessions))
	for _, s := range t.sessions {
		infos = append(infos, s.info())
	}
	t.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].StartTime.Equal(infos[j].StartTime) {
			return infos[i].DocID < infos[j].DocID
		}
		return infos[i].StartTime.Before(infos[j].StartTime)
	})
	return infos
}

func (s *Session) info() *ProgressInfo {
	// 计算进度百分比
	progress := float64(0)
	if s.TotalUnits > 0 {
		progress = float64(s.DoneUnits) / float64(s.TotalUnits) * 100
	}
	if s.Stage == StageDone {
		progress = 100
	}

	end := time.Now()
	if !s.EndTime.IsZero() {
		end = s.EndTime
	}
	elapsed := end.Sub(s.StartTime)

	// 估算剩余时间
	var estimatedCompletion time.Time
	if s.DoneUnits > 0 && s.DoneUnits < s.TotalUnits && s.EndTime.IsZero() {
		avgTimePerUnit := elapsed / time.Duration(s.DoneUnits)
		remaining := avgTimePerUnit * time.Duration(s.TotalUnits-s.DoneUnits)
		estimatedCompletion = time.Now().Add(remaining)
	}

	return &ProgressInfo{
		DocID:               s.DocID,
		Stage:               s.Stage,
		TotalUnits:          s.TotalUnits,
		DoneUnits:           s.DoneUnits,
		Progress:            progress,
		StartTime:           s.StartTime,
		Elapsed:             elapsed,
		EstimatedCompletion: estimatedCompletion,
	}
}
