package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/pagination"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

// MemoryStore keeps every table in process memory. It backs the daemon when
// no database is configured and the CLI's offline ask command.
type MemoryStore struct {
	mu         sync.RWMutex
	txMu       sync.Mutex
	coreDocs   string
	manual     string
	landing    *domain.LandingConfig
	items      map[string]domain.KnowledgeItemFull
	flat       map[string][]domain.KnowledgeItem
	snippets   []domain.Snippet
	logs       []domain.ChatLog
	candidates map[string]*domain.CandidateQuestion
}

// NewMemoryStore creates a store holding the given core docs and knowledge.
func NewMemoryStore(coreDocs string, items []domain.KnowledgeItemFull, landing *domain.LandingConfig) *MemoryStore {
	m := &MemoryStore{
		coreDocs:   coreDocs,
		items:      make(map[string]domain.KnowledgeItemFull),
		flat:       make(map[string][]domain.KnowledgeItem),
		candidates: make(map[string]*domain.CandidateQuestion),
	}
	for i := range items {
		item := cloneItem(items[i])
		m.items[item.ID] = item
		m.flat[item.ID] = domain.FlattenKnowledge(&item)
	}
	if landing != nil {
		l := *landing
		m.landing = &l
	}
	return m
}

func (m *MemoryStore) GetFlatKB(ctx context.Context) ([]domain.KnowledgeItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.KnowledgeItem
	for _, id := range m.sortedItemIDs() {
		out = append(out, m.flat[id]...)
	}
	return out, nil
}

func (m *MemoryStore) GetStructuredKB(ctx context.Context) ([]domain.KnowledgeItemFull, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.KnowledgeItemFull, 0, len(m.items))
	for _, id := range m.sortedItemIDs() {
		out = append(out, cloneItem(m.items[id]))
	}
	return out, nil
}

func (m *MemoryStore) GetDocText(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return joinDocs(m.coreDocs, m.manual), nil
}

func (m *MemoryStore) GetSnippets(ctx context.Context) ([]domain.Snippet, error) {
	return m.Snippets().List(ctx)
}

func (m *MemoryStore) GetLandingConfig(ctx context.Context) (*domain.LandingConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.landing == nil {
		return nil, nil
	}
	l := *m.landing
	return &l, nil
}

func (m *MemoryStore) SaveLandingConfig(ctx context.Context, cfg domain.LandingConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.landing = &cfg
	return nil
}

func (m *MemoryStore) GetManual(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.manual, nil
}

func (m *MemoryStore) SaveManual(ctx context.Context, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual = content
	return nil
}

func (m *MemoryStore) DeleteManual(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual = ""
	return nil
}

func (m *MemoryStore) GetRecentLogs(ctx context.Context, limit int) ([]domain.ChatLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := m.logsNewestFirst()
	if limit >= 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	out := make([]domain.ChatLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, *l)
	}
	return out, nil
}

func (m *MemoryStore) SaveCandidateQuestion(ctx context.Context, question string, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if c, ok := m.candidates[question]; ok {
		c.Count++
		c.UpdatedAt = now
		return nil
	}
	m.candidates[question] = &domain.CandidateQuestion{
		Question:  question,
		Count:     1,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// WithTx serializes fn against other transactions and restores the knowledge
// tables when fn fails.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	items := make(map[string]domain.KnowledgeItemFull, len(m.items))
	for k, v := range m.items {
		items[k] = cloneItem(v)
	}
	flat := make(map[string][]domain.KnowledgeItem, len(m.flat))
	for k, v := range m.flat {
		flat[k] = slices.Clone(v)
	}
	m.mu.RUnlock()

	if err := fn(memTxRepos{m}); err != nil {
		m.mu.Lock()
		m.items = items
		m.flat = flat
		m.mu.Unlock()
		return err
	}
	return nil
}

// Knowledge returns the structured knowledge table.
func (m *MemoryStore) Knowledge() service.KnowledgeRepositoryInterface {
	return memKnowledge{m}
}

// Snippets returns the snippets table.
func (m *MemoryStore) Snippets() service.SnippetRepositoryInterface {
	return memSnippets{m}
}

// ChatLogs returns the chat log table.
func (m *MemoryStore) ChatLogs() service.ChatLogRepositoryInterface {
	return memChatLogs{m}
}

// Candidates returns the candidate question table.
func (m *MemoryStore) Candidates() service.CandidateRepositoryInterface {
	return memCandidates{m}
}

func (m *MemoryStore) sortedItemIDs() []string {
	ids := make([]string, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *MemoryStore) logsNewestFirst() []*domain.ChatLog {
	out := make([]*domain.ChatLog, 0, len(m.logs))
	for i := range m.logs {
		out = append(out, &m.logs[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

type memTxRepos struct{ m *MemoryStore }

func (r memTxRepos) Knowledge() service.KnowledgeRepositoryInterface { return memKnowledge(r) }

type memKnowledge struct{ m *MemoryStore }

func (k memKnowledge) ListStructured(ctx context.Context) ([]domain.KnowledgeItemFull, error) {
	return k.m.GetStructuredKB(ctx)
}

func (k memKnowledge) ListFlat(ctx context.Context) ([]domain.KnowledgeItem, error) {
	return k.m.GetFlatKB(ctx)
}

func (k memKnowledge) GetByID(ctx context.Context, id string) (*domain.KnowledgeItemFull, error) {
	k.m.mu.RLock()
	defer k.m.mu.RUnlock()
	item, ok := k.m.items[id]
	if !ok {
		return nil, domain.ErrKnowledgeNotFound
	}
	item = cloneItem(item)
	return &item, nil
}

func (k memKnowledge) Upsert(ctx context.Context, item *domain.KnowledgeItemFull) error {
	k.m.mu.Lock()
	defer k.m.mu.Unlock()
	next := cloneItem(*item)
	if prev, ok := k.m.items[item.ID]; ok {
		next.CreatedAt = prev.CreatedAt
	}
	k.m.items[item.ID] = next
	return nil
}

func (k memKnowledge) ReplaceFlat(ctx context.Context, itemID string, flat []domain.KnowledgeItem) error {
	k.m.mu.Lock()
	defer k.m.mu.Unlock()
	if len(flat) == 0 {
		delete(k.m.flat, itemID)
		return nil
	}
	k.m.flat[itemID] = slices.Clone(flat)
	return nil
}

func (k memKnowledge) Delete(ctx context.Context, id string) error {
	k.m.mu.Lock()
	defer k.m.mu.Unlock()
	if _, ok := k.m.items[id]; !ok {
		return domain.ErrKnowledgeNotFound
	}
	delete(k.m.items, id)
	delete(k.m.flat, id)
	return nil
}

type memSnippets struct{ m *MemoryStore }

func (s memSnippets) Create(ctx context.Context, snippet *domain.Snippet) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.snippets = append(s.m.snippets, *snippet)
	return nil
}

func (s memSnippets) List(ctx context.Context) ([]domain.Snippet, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := slices.Clone(s.m.snippets)
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s memSnippets) Delete(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for i, snippet := range s.m.snippets {
		if snippet.ID == id {
			s.m.snippets = slices.Delete(s.m.snippets, i, i+1)
			return nil
		}
	}
	return domain.ErrSnippetNotFound
}

type memChatLogs struct{ m *MemoryStore }

func (c memChatLogs) Create(ctx context.Context, l *domain.ChatLog) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.logs = append(c.m.logs, *l)
	return nil
}

func (c memChatLogs) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.ChatLogPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()

	var items []*domain.ChatLog
	for _, l := range c.m.logsNewestFirst() {
		if cursor != nil && !chatLogBefore(l, cursor) {
			continue
		}
		cp := *l
		items = append(items, &cp)
		if len(items) > limit {
			break
		}
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return &service.ChatLogPageResult{Items: items, NextCursor: nextCursor, HasMore: hasMore}, nil
}

func chatLogBefore(l *domain.ChatLog, cursor *pagination.Cursor) bool {
	if l.CreatedAt.Equal(cursor.Timestamp) {
		return l.ID < cursor.LastID
	}
	return l.CreatedAt.Before(cursor.Timestamp)
}

type memCandidates struct{ m *MemoryStore }

func (c memCandidates) ListWithCursor(ctx context.Context, cursor *pagination.CountCursor, limit int) (*service.CandidatePageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	c.m.mu.RLock()
	all := make([]*domain.CandidateQuestion, 0, len(c.m.candidates))
	for _, q := range c.m.candidates {
		cp := *q
		all = append(all, &cp)
	}
	c.m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return strings.Compare(all[i].Question, all[j].Question) < 0
	})

	var items []*domain.CandidateQuestion
	for _, q := range all {
		if cursor != nil && !(q.Count < cursor.Count || (q.Count == cursor.Count && q.Question > cursor.LastKey)) {
			continue
		}
		items = append(items, q)
		if len(items) > limit {
			break
		}
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCountCursor(last.Question, last.Count)
	}
	return &service.CandidatePageResult{Items: items, NextCursor: nextCursor, HasMore: hasMore}, nil
}

func cloneItem(item domain.KnowledgeItemFull) domain.KnowledgeItemFull {
	item.Questions = slices.Clone(item.Questions)
	return item
}
