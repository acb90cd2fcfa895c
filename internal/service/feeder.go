package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/telemetry"
)

// LogStore is the part of the store the log miner reads from and writes to.
type LogStore interface {
	// GetRecentLogs returns at most limit logs, newest first.
	GetRecentLogs(ctx context.Context, limit int) ([]domain.ChatLog, error)
	// SaveCandidateQuestion inserts question with count 1 or increments its count.
	SaveCandidateQuestion(ctx context.Context, question string, category domain.Category) error
}

// CandidateRecorder receives one observation per candidate question written.
type CandidateRecorder interface {
	CandidateSaved(category string)
}

type noopCandidateRecorder struct{}

func (noopCandidateRecorder) CandidateSaved(string) {}

// LogMinerConfig controls which unmatched questions become candidates.
type LogMinerConfig struct {
	// Window is how many recent logs are scanned.
	Window int
	// MinLength is the trimmed length a question must exceed.
	MinLength int
	// MinOccurrences is how often a question must recur within the window.
	MinOccurrences int
	Recorder       CandidateRecorder
}

// DefaultLogMinerConfig returns the stock mining thresholds.
func DefaultLogMinerConfig() LogMinerConfig {
	return LogMinerConfig{
		Window:         50,
		MinLength:      5,
		MinOccurrences: 3,
		Recorder:       noopCandidateRecorder{},
	}
}

// LogMiner turns recurring unmatched questions into candidate questions.
//
// A question is only written when at least one of its occurrences sits in a
// log the miner has not seen on a previous run, so a candidate's count grows
// once per new session that asks it, however often the miner runs.
type LogMiner struct {
	store  LogStore
	cfg    LogMinerConfig
	logger *zap.Logger

	mu sync.Mutex
	// seen holds the log ids of the window scanned by the last successful run.
	seen map[string]struct{}
}

// NewLogMiner creates a LogMiner. Non-positive thresholds take their defaults.
func NewLogMiner(store LogStore, cfg LogMinerConfig, logger *zap.Logger) *LogMiner {
	def := DefaultLogMinerConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.MinOccurrences <= 0 {
		cfg.MinOccurrences = def.MinOccurrences
	}
	if cfg.Recorder == nil {
		cfg.Recorder = def.Recorder
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMiner{store: store, cfg: cfg, logger: logger}
}

// Run scans the recent logs once and upserts every question that recurred
// often enough. It returns how many candidates were written.
func (m *LogMiner) Run(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "LogMiner.Run", telemetry.SpanAttributes{
		Operation: "auto_expand",
	})
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	logs, err := m.store.GetRecentLogs(ctx, m.cfg.Window)
	if err != nil {
		span.SetError(err)
		return 0, fmt.Errorf("failed to read recent logs: %w", err)
	}
	if len(logs) > m.cfg.Window {
		logs = logs[:m.cfg.Window]
	}

	window := make(map[string]struct{}, len(logs))
	counts := make(map[string]int)
	fresh := make(map[string]bool)
	var order []string
	for _, l := range logs {
		window[l.ID] = struct{}{}
		if l.UnmatchedQuestion == nil {
			continue
		}
		q := strings.TrimSpace(*l.UnmatchedQuestion)
		if runeLen(q) <= m.cfg.MinLength {
			continue
		}
		if counts[q] == 0 {
			order = append(order, q)
		}
		counts[q]++
		if _, ok := m.seen[l.ID]; !ok {
			fresh[q] = true
		}
	}

	saved := 0
	for _, q := range order {
		if counts[q] < m.cfg.MinOccurrences || !fresh[q] {
			continue
		}
		category := domain.CategoryGeneral
		if intent := DetectIntent(q); intent != nil {
			category = intent.Intent.Category
		}
		if err := m.store.SaveCandidateQuestion(ctx, q, category); err != nil {
			span.SetError(err)
			return saved, fmt.Errorf("failed to save candidate question: %w", err)
		}
		saved++
		m.cfg.Recorder.CandidateSaved(string(category))
		telemetry.AddBreadcrumb(ctx, "log_miner", "candidate question saved: "+q)
	}
	m.seen = window

	m.logger.Info("log mining finished",
		zap.Int("logs_scanned", len(logs)),
		zap.Int("distinct_questions", len(order)),
		zap.Int("candidates_saved", saved))
	return saved, nil
}

// AutoExpandFromLogs runs the miner and swallows any failure after logging it.
func (m *LogMiner) AutoExpandFromLogs(ctx context.Context) {
	if _, err := m.Run(ctx); err != nil {
		m.logger.Error("auto expand from logs failed", zap.Error(err))
		telemetry.CaptureError(ctx, err)
	}
}

// ProcessJobs lets the background worker drive the miner. It never fails.
func (m *LogMiner) ProcessJobs(ctx context.Context) error {
	m.AutoExpandFromLogs(ctx)
	return nil
}
