package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/telemetry"
)

// ReplySource tells which branch of the composer produced a reply.
type ReplySource string

const (
	ReplyGreeting ReplySource = "greeting"
	ReplySnippets ReplySource = "snippets"
	ReplyKB       ReplySource = "kb"
	ReplyDocs     ReplySource = "docs"
	ReplyContact  ReplySource = "contact"
	ReplyFallback ReplySource = "fallback"
)

// Reply is the composed answer for one user turn, plus what the caller needs
// to log it.
type Reply struct {
	Text    string
	Emotion domain.Emotion
	// Intent is nil when no catalogue intent cleared the threshold.
	Intent *DetectedIntent
	Source ReplySource
	// Unmatched is true when no knowledge source answered and the fallback
	// engine produced the text.
	Unmatched bool
}

// Persona is who the bot introduces itself as.
type Persona struct {
	Name    string
	Company string
	Product string
}

// DefaultPersona returns the stock support persona.
func DefaultPersona() Persona {
	return Persona{Name: "أحمد", Company: "Modern Soft", Product: "E-stock"}
}

// ReplyRecorder receives one observation per composed reply.
type ReplyRecorder interface {
	ObserveReply(source string, emotion string, unmatched bool, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveReply(string, string, bool, time.Duration) {}

// ResponderConfig holds the collaborators of a Responder.
type ResponderConfig struct {
	Persona  Persona
	Picker   Picker
	Logger   *zap.Logger
	Recorder ReplyRecorder
}

// DefaultResponderConfig returns a config with the stock persona, a random
// picker and no-op logging and metrics.
func DefaultResponderConfig() ResponderConfig {
	return ResponderConfig{
		Persona:  DefaultPersona(),
		Picker:   DefaultPicker(),
		Logger:   zap.NewNop(),
		Recorder: noopRecorder{},
	}
}

// Responder answers support-chat messages from a knowledge store. It holds no
// per-conversation state; every call works on a freshly loaded Snapshot.
type Responder struct {
	store  KnowledgeStore
	cfg    ResponderConfig
	tone   *ToneWrapper
	latest atomic.Pointer[Snapshot]
}

// NewResponder creates a Responder. Zero fields in cfg take their defaults.
func NewResponder(store KnowledgeStore, cfg ResponderConfig) *Responder {
	def := DefaultResponderConfig()
	if cfg.Persona.Name == "" {
		cfg.Persona.Name = def.Persona.Name
	}
	if cfg.Persona.Company == "" {
		cfg.Persona.Company = def.Persona.Company
	}
	if cfg.Persona.Product == "" {
		cfg.Persona.Product = def.Persona.Product
	}
	if cfg.Picker == nil {
		cfg.Picker = def.Picker
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if cfg.Recorder == nil {
		cfg.Recorder = def.Recorder
	}
	return &Responder{
		store: store,
		cfg:   cfg,
		tone:  NewToneWrapper(cfg.Picker),
	}
}

// Initialize loads every knowledge source once and publishes the snapshot.
func (r *Responder) Initialize(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "Responder.Initialize", telemetry.SpanAttributes{
		Operation: "initialize",
	})
	defer span.End()

	snap, err := LoadSnapshot(ctx, r.store)
	if err != nil {
		span.SetError(err)
		return err
	}
	r.latest.Store(snap)
	r.cfg.Logger.Info("knowledge snapshot loaded",
		zap.Int("structured_items", len(snap.StructuredKB)),
		zap.Int("flat_items", len(snap.FlatKB)),
		zap.Int("doc_sections", len(snap.Sections)),
		zap.Int("snippets", len(snap.Snippets)))
	return nil
}

// Snapshot returns the snapshot published by the last Initialize, or nil.
func (r *Responder) Snapshot() *Snapshot {
	return r.latest.Load()
}

// GenerateResponse returns only the reply text for message.
func (r *Responder) GenerateResponse(ctx context.Context, message string, history []domain.Message) (string, error) {
	reply, err := r.Respond(ctx, message, history)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// Respond reloads the knowledge store and composes the reply to message.
// history holds the turns before message. Callers serialize turns per
// conversation.
func (r *Responder) Respond(ctx context.Context, message string, history []domain.Message) (*Reply, error) {
	ctx, span := telemetry.StartSpan(ctx, "Responder.Respond", telemetry.SpanAttributes{
		Operation: "respond",
	})
	defer span.End()

	start := time.Now()
	snap, err := LoadSnapshot(ctx, r.store)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	reply := r.Compose(snap, message, history)

	span.SetTag("source", string(reply.Source))
	span.SetTag("emotion", string(reply.Emotion))
	if reply.Intent != nil {
		span.SetTag("intent", string(reply.Intent.Intent.Name))
	}
	r.cfg.Recorder.ObserveReply(string(reply.Source), string(reply.Emotion), reply.Unmatched, time.Since(start))
	r.cfg.Logger.Debug("reply composed",
		zap.String("source", string(reply.Source)),
		zap.String("emotion", string(reply.Emotion)),
		zap.Bool("unmatched", reply.Unmatched))

	return reply, nil
}

// Compose builds the reply to message from an already loaded snapshot.
// It is pure apart from the picker.
func (r *Responder) Compose(snap *Snapshot, message string, history []domain.Message) *Reply {
	t := &turn{
		snap:    snap,
		q:       analyze(message),
		emotion: ClassifyEmotion(message),
		picker:  r.cfg.Picker,
		tone:    r.tone,
		persona: r.cfg.Persona,
	}
	return t.compose(message, history)
}

// greetingHistoryLimit is the history length up to which greetings short-circuit.
const greetingHistoryLimit = 2

var greetingTokens = []string{"أهلا", "مرحبا", "السلام", "صباح", "مساء", "هلا", "أهلاً", "مرحب", "السلام عليكم", "صباح الخير", "مساء الخير"}

// turn carries everything derived for one user message.
type turn struct {
	snap    *Snapshot
	q       query
	emotion domain.Emotion
	intent  *DetectedIntent
	picker  Picker
	tone    *ToneWrapper
	persona Persona
}

func (t *turn) compose(message string, history []domain.Message) *Reply {
	reply := &Reply{Emotion: t.emotion}

	if isGreeting(message) && len(history) <= greetingHistoryLimit {
		reply.Source = ReplyGreeting
		reply.Text = pick(t.picker, greetingTemplates(t.persona))
		return reply
	}

	t.intent = detectIntent(t.q)
	reply.Intent = t.intent

	if snippets := searchSnippets(t.snap, t.q); len(snippets) > 0 && snippets[0].Score > snippetAcceptScore {
		reply.Source = ReplySnippets
		reply.Text = t.tone.Wrap(snippets[0].Content, t.intent, t.emotion)
		return reply
	}

	if kb := searchKB(t.snap, t.q); kb != nil {
		content := kb.Content
		if t.emotion == domain.EmotionRushed {
			content = strings.SplitN(content, "\n", 2)[0]
		}
		reply.Source = ReplyKB
		reply.Text = t.tone.Wrap(content, t.intent, t.emotion)
		return reply
	}

	docs := searchDocs(t.snap, t.q, t.intent)
	if len(docs) > 0 && docs[0].Score > docAcceptScore {
		reply.Source = ReplyDocs
		reply.Text = t.formatDocResult(docs)
		return reply
	}

	if t.intent != nil && t.intent.Intent.Category == domain.CategoryContact {
		reply.Source = ReplyContact
		reply.Text = pick(t.picker, contactTemplates(t.snap.Landing))
		return reply
	}

	reply.Source = ReplyFallback
	reply.Unmatched = true
	reply.Text = t.fallback(docs)
	return reply
}

func isGreeting(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, g := range greetingTokens {
		if strings.Contains(lower, g) {
			return true
		}
	}
	return false
}

func greetingTemplates(p Persona) []string {
	return []string{
		fmt.Sprintf("أهلاً وسهلاً بحضرتك! 🧡\nمعاك %s من فريق الدعم الفني في %s.\n\nأنا هنا عشان أساعدك في أي وقت مع نظام %s.\n\nعشان أقدر أخدمك بأفضل شكل، ممكن أتشرف ببيانات حضرتك؟\n(الاسم، اسم الصيدلية، رقم التليفون، والعنوان)\n\nوبعدها أمرني، أنا تحت أمرك.", p.Name, p.Company, p.Product),
		fmt.Sprintf("أهلاً بحضرتك! 🧡\nمعاك %s من فريق الدعم الفني.\n\nممكن أتشرف ببيانات حضرتك عشان أقدر أساعدك بشكل أفضل؟\n(الاسم، اسم الصيدلية، رقم التليفون، والعنوان)\n\nوبعدها قولي إيه اللي محتاجه وأنا معاك.", p.Name),
		fmt.Sprintf("أهلاً وسهلاً! 🧡\nمعاك %s من %s.\n\nممكن بيانات حضرتك عشان أخدمك أحسن؟\n(الاسم، اسم الصيدلية، رقم التليفون، والعنوان)\n\nوبعدها قولي إيه اللي محتاجه وأنا جاهز.", p.Name, p.Company),
	}
}

func contactTemplates(c domain.LandingConfig) []string {
	return []string{
		fmt.Sprintf("طبعاً يا فندم! 📞\n\nرقمنا: %s\nالإيميل: %s\nالعنوان: %s\n\nاتصل بنا في أي وقت، احنا معاك!", c.ContactPhone, c.ContactEmail, c.ContactAddress),
		fmt.Sprintf("بالطبع! 📞\n\nممكن تتواصل معانا على:\n📞 %s\n📧 %s\n📍 %s\n\nاحنا جاهزين في أي وقت!", c.ContactPhone, c.ContactEmail, c.ContactAddress),
	}
}

const (
	rushedLineMinLen      = 10
	rushedExcerptLimit    = 100
	docLineMinLen         = 10
	wherePathLines        = 3
	wherePathContextLines = 4
	whereLines            = 5
	howStepLines          = 5
	howLines              = 6
	defaultDocLines       = 8
	relatedProbeLen       = 50
	relatedWithPathLimit  = 200
	relatedNoPathLimit    = 250
)

// formatDocResult shapes the top documentation hit for the detected intent
// and emotion.
func (t *turn) formatDocResult(results []SearchResult) string {
	best := results[0]
	path := best.Path
	if path == "" {
		path = ExtractOfficialPath(best.Content)
	}

	if t.emotion == domain.EmotionRushed {
		if path != "" {
			return t.tone.Wrap(path, t.intent, t.emotion)
		}
		for _, l := range strings.Split(best.Content, "\n") {
			if runeLen(strings.TrimSpace(l)) > rushedLineMinLen {
				return t.tone.Wrap(l, t.intent, t.emotion)
			}
		}
		return t.tone.Wrap(truncateRunes(best.Content, rushedExcerptLimit), t.intent, t.emotion)
	}

	lines := substantialLines(best.Content, docLineMinLen)
	var response string

	switch {
	case t.intent != nil && t.intent.Intent.Name == domain.IntentWhere:
		var paths []string
		for _, l := range lines {
			if strings.Contains(l, "[") && strings.Contains(l, "]") {
				paths = append(paths, l)
			}
		}
		switch {
		case len(paths) > 0:
			response = strings.Join(firstLines(paths, wherePathLines), "\n")
		case path != "":
			response = path + "\n\n" + strings.Join(firstLines(lines, wherePathContextLines), "\n")
		default:
			response = strings.Join(firstLines(lines, whereLines), "\n")
		}
	case t.intent != nil && t.intent.Intent.Name == domain.IntentHow:
		var steps []string
		for _, l := range lines {
			if stepLinePattern.MatchString(strings.TrimSpace(l)) {
				steps = append(steps, l)
			}
		}
		if len(steps) > 0 {
			response = strings.Join(firstLines(steps, howStepLines), "\n")
		} else {
			response = strings.Join(firstLines(lines, howLines), "\n")
		}
	default:
		response = strings.Join(firstLines(lines, defaultDocLines), "\n")
	}

	if path != "" && !strings.Contains(response, path) {
		response = path + "\n\n" + response
	}

	if len(results) > 1 {
		related := results[1]
		if !strings.Contains(response, truncateRunes(related.Content, relatedProbeLen)) {
			relatedPath := related.Path
			if relatedPath == "" {
				relatedPath = ExtractOfficialPath(related.Content)
			}
			if relatedPath != "" {
				response += "\n\n💡 كمان معلومة مفيدة:\n" + relatedPath + "\n" + truncateRunes(related.Content, relatedWithPathLimit)
			} else {
				response += "\n\n💡 كمان معلومة مفيدة:\n" + truncateRunes(related.Content, relatedNoPathLimit)
			}
		}
	}

	return t.tone.Wrap(response, t.intent, t.emotion)
}
