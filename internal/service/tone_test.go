package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

func firstPicker() Picker {
	return PickerFunc(func(int) int { return 0 })
}

func TestScrubForbidden(t *testing.T) {
	assert.Equal(t, "الصنف دعني أساعدك في المخزن", ScrubForbidden("الصنف مش موجود في المخزن"))
	assert.Equal(t, "دعني أساعدك، دعني أساعدك", ScrubForbidden("مش عارف، لا يمكن"))
	assert.Equal(t, "افتح شاشة الاصناف", ScrubForbidden("افتح شاشة الاصناف"))
}

func TestToneWrapper_Wrap(t *testing.T) {
	w := NewToneWrapper(firstPicker())
	where := DetectIntent("مكان")

	tests := []struct {
		name    string
		content string
		intent  *DetectedIntent
		emotion domain.Emotion
		want    string
	}{
		{
			name:    "angry",
			content: "افتح شاشة الاصناف",
			emotion: domain.EmotionAngry,
			want:    "معلش عن الإزعاج! افتح شاشة الاصناف\n\nلو محتاج أي حاجة تانية، أنا معاك!",
		},
		{
			name:    "rushed gets no suffix",
			content: "افتح شاشة الاصناف",
			emotion: domain.EmotionRushed,
			want:    "ماشي! افتح شاشة الاصناف",
		},
		{
			name:    "intent prefix",
			content: "افتح شاشة الاصناف",
			intent:  where,
			emotion: domain.EmotionNormal,
			want:    "بالطبع! افتح شاشة الاصناف\n\nلو محتاج أي حاجة تانية، قولي وأنا تحت أمرك!",
		},
		{
			name:    "no intent and no emotion",
			content: "افتح شاشة الاصناف",
			want:    "طبعاً! افتح شاشة الاصناف\n\nلو محتاج أي حاجة تانية، قولي وأنا تحت أمرك!",
		},
		{
			name:    "opener suppresses prefix",
			content: "أكيد تقدر تعدل الفاتورة",
			emotion: domain.EmotionRushed,
			want:    "أكيد تقدر تعدل الفاتورة",
		},
		{
			name:    "closer suppresses suffix",
			content: "افتح الشاشة وقولي لو وقفت",
			emotion: domain.EmotionNormal,
			want:    "طبعاً! افتح الشاشة وقولي لو وقفت",
		},
		{
			name:    "forbidden phrase is scrubbed before framing",
			content: "الصنف مش متاح حاليا",
			emotion: domain.EmotionRushed,
			want:    "ماشي! الصنف دعني أساعدك حاليا",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Wrap(tt.content, tt.intent, tt.emotion))
		})
	}
}

func TestToneWrapper_OutOfRangePickerFallsBackToFirst(t *testing.T) {
	w := NewToneWrapper(PickerFunc(func(n int) int { return n + 7 }))
	assert.Equal(t, "ماشي! افتح", w.Wrap("افتح", nil, domain.EmotionRushed))
}

func TestIntentPrefixes_CoverCatalogue(t *testing.T) {
	for _, in := range Catalogue() {
		assert.NotEmpty(t, intentPrefixes[in.Name], "intent %s", in.Name)
	}
}

func TestToneWrapper_NeverLeaksForbiddenPhrases(t *testing.T) {
	fragments := append([]string{"افتح", "الشاشة", "الصنف", "في", "المخزن", "،", "\n"}, forbiddenPhrases...)
	emotions := []domain.Emotion{domain.EmotionNormal, domain.EmotionAngry, domain.EmotionRushed, ""}

	rapid.Check(t, func(t *rapid.T) {
		content := strings.Join(rapid.SliceOfN(rapid.SampledFrom(fragments), 1, 12).Draw(t, "content"), " ")
		emotion := rapid.SampledFrom(emotions).Draw(t, "emotion")
		w := NewToneWrapper(PickerFunc(func(n int) int { return rapid.IntRange(0, n-1).Draw(t, "pick") }))

		out := w.Wrap(content, nil, emotion)
		for _, p := range forbiddenPhrases {
			if strings.Contains(out, p) {
				t.Fatalf("%q leaked into %q", p, out)
			}
		}
	})
}
