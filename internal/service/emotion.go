package service

import (
	"regexp"
	"strings"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

var angryLexicon = []string{
	"مش شغال", "بايظ", "زفت", "تعبان", "مش راضي", "مشكلة",
	"غلط", "خطأ", "إيرور", "عطل", "مش بيشتغل",
}

var rushedLexicon = []string{
	"بسرعة", "مستعجل", "حالا", "دلوقتي", "عاجل", "فورا", "الآن",
}

var normalizedRushedLexicon = func() []string {
	out := make([]string, len(rushedLexicon))
	for i, w := range rushedLexicon {
		out[i] = Normalize(w)
	}
	return out
}()

var shoutingPattern = regexp.MustCompile(`[A-Z]{3,}`)

// shortMessageTokens is the word count at or below which a message reads as rushed.
const shortMessageTokens = 5

// ClassifyEmotion labels text as angry, rushed or normal. Angry always wins over rushed.
func ClassifyEmotion(text string) domain.Emotion {
	normalized := Normalize(text)
	lower := strings.ToLower(text)

	for _, w := range angryLexicon {
		if strings.Contains(normalized, w) || strings.Contains(lower, w) {
			return domain.EmotionAngry
		}
	}
	if strings.Contains(text, "!") || shoutingPattern.MatchString(text) {
		return domain.EmotionAngry
	}

	for i, w := range rushedLexicon {
		if strings.Contains(normalized, normalizedRushedLexicon[i]) || strings.Contains(lower, w) {
			return domain.EmotionRushed
		}
	}
	if len(strings.Fields(text)) <= shortMessageTokens {
		return domain.EmotionRushed
	}

	return domain.EmotionNormal
}
