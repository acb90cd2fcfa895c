package service

import (
	"math/rand/v2"
	"strings"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

// Picker chooses an index in [0, n). Tests inject a fixed Picker to pin
// template selection.
type Picker interface {
	IntN(n int) int
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(n int) int

// IntN implements Picker.
func (f PickerFunc) IntN(n int) int { return f(n) }

type randomPicker struct{}

func (randomPicker) IntN(n int) int { return rand.IntN(n) }

// DefaultPicker returns a uniform pseudo-random Picker safe for concurrent use.
func DefaultPicker() Picker { return randomPicker{} }

func pick(p Picker, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	i := p.IntN(len(pool))
	if i < 0 || i >= len(pool) {
		i = 0
	}
	return pool[i]
}

// forbiddenPhrases are admissions of ignorance that must never reach a customer.
var forbiddenPhrases = []string{"مش عارف", "غير متوفر", "لا يمكن", "مش متوفر", "مش موجود", "مش متاح"}

const redirectPhrase = "دعني أساعدك"

var (
	angryPrefixes   = []string{"معلش عن الإزعاج! ", "فهمتك تماماً! ", "مش مشكلة، هحل المشكلة دي معاك! ", "متفهم الموقف! "}
	rushedPrefixes  = []string{"ماشي! ", "طبعاً! ", "أكيد! "}
	genericPrefixes = []string{"طبعاً! ", "بالطبع! ", "أكيد! ", "ماشي! "}

	angrySuffixes  = []string{"\n\nلو محتاج أي حاجة تانية، أنا معاك!", "\n\nلو في أي مشكلة تانية، قولي وأنا تحت أمرك!"}
	normalSuffixes = []string{
		"\n\nلو محتاج أي حاجة تانية، قولي وأنا تحت أمرك!",
		"\n\nلو في أي سؤال تاني، أنا جاهز!",
		"\n\nلو محتاج مساعدة أكتر، أنا معاك!",
		"\n\nلو في أي حاجة تانية، قولي!",
	}
)

// intentPrefixes covers every catalogue intent.
var intentPrefixes = map[domain.IntentName][]string{
	domain.IntentSalesInvoice: {"طبعاً! ", "أكيد! ", "ماشي! ", "بالطبع! "},
	domain.IntentSalesReturn:  genericPrefixes,
	domain.IntentInventory:    {"طبعاً! ", "بالطبع! ", "أكيد! ", "ماشي! "},
	domain.IntentPurchases:    genericPrefixes,
	domain.IntentSuppliers:    genericPrefixes,
	domain.IntentCustomers:    genericPrefixes,
	domain.IntentAccounts:     genericPrefixes,
	domain.IntentReports:      genericPrefixes,
	domain.IntentWhere:        {"بالطبع! ", "طبعاً! ", "أكيد! ", "ماشي! "},
	domain.IntentHow:          {"طبعاً! ", "بالطبع! ", "سهلة خالص! ", "ماشي! "},
	domain.IntentProblem:      {"معلش عن الإزعاج! ", "مش مشكلة! ", "هحل المشكلة دي معاك! ", "ماشي! "},
	domain.IntentContact:      genericPrefixes,
}

// openers are leading words that already frame a reply; content starting
// with one of them gets no prefix.
var openers = []string{"طبعاً", "طبعا", "بالطبع", "أكيد", "معلش", "ماشي", "فهمتك", "متفهم", "مش مشكلة", "سهلة", "هحل"}

// closers are phrases that already end a reply politely.
var closers = []string{"قولي", "معاك", "جاهز"}

// ToneWrapper enforces the no-ignorance policy and adds conversational framing.
type ToneWrapper struct {
	picker Picker
}

// NewToneWrapper creates a ToneWrapper. A nil picker selects DefaultPicker.
func NewToneWrapper(picker Picker) *ToneWrapper {
	if picker == nil {
		picker = DefaultPicker()
	}
	return &ToneWrapper{picker: picker}
}

// Wrap replaces forbidden phrases and adds an emotion- and intent-aware prefix
// and suffix. intent may be nil and emotion may be empty.
func (w *ToneWrapper) Wrap(content string, intent *DetectedIntent, emotion domain.Emotion) string {
	content = ScrubForbidden(content)

	prefix := pick(w.picker, w.prefixPool(intent, emotion))
	suffix := pick(w.picker, suffixPool(emotion))

	if !hasOpener(content) {
		content = prefix + content
	}
	if suffix != "" && !hasCloser(content) {
		content += suffix
	}
	return content
}

// ScrubForbidden replaces every forbidden hedge phrase with the redirect phrase.
func ScrubForbidden(content string) string {
	for _, p := range forbiddenPhrases {
		content = strings.ReplaceAll(content, p, redirectPhrase)
	}
	return content
}

func (w *ToneWrapper) prefixPool(intent *DetectedIntent, emotion domain.Emotion) []string {
	switch emotion {
	case domain.EmotionAngry:
		return angryPrefixes
	case domain.EmotionRushed:
		return rushedPrefixes
	}
	if intent != nil {
		if pool, ok := intentPrefixes[intent.Intent.Name]; ok {
			return pool
		}
	}
	return genericPrefixes
}

func suffixPool(emotion domain.Emotion) []string {
	switch emotion {
	case domain.EmotionAngry:
		return angrySuffixes
	case domain.EmotionRushed:
		return nil
	}
	return normalSuffixes
}

func hasOpener(content string) bool {
	trimmed := strings.TrimSpace(content)
	for _, o := range openers {
		if strings.HasPrefix(trimmed, o) {
			return true
		}
	}
	return false
}

func hasCloser(content string) bool {
	for _, c := range closers {
		if strings.Contains(content, c) {
			return true
		}
	}
	return false
}
