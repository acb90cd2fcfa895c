package domain

// Emotion is the register a user message was written in
type Emotion string

const (
	EmotionAngry  Emotion = "angry"
	EmotionRushed Emotion = "rushed"
	EmotionNormal Emotion = "normal"
)

// IsValid reports whether e is one of the three known labels
func (e Emotion) IsValid() bool {
	switch e {
	case EmotionAngry, EmotionRushed, EmotionNormal:
		return true
	}
	return false
}

// ParseEmotion converts s into an Emotion. An empty string yields EmotionNormal.
func ParseEmotion(s string) (Emotion, error) {
	if s == "" {
		return EmotionNormal, nil
	}
	e := Emotion(s)
	if !e.IsValid() {
		return "", ErrInvalidEmotion
	}
	return e, nil
}
