package domain

import (
	"fmt"
	"strings"
	"time"
)

// KnowledgeItem is a flat question/answer record
type KnowledgeItem struct {
	ID       string
	Question string
	Answer   string
	Tags     []string
}

// KnowledgeItemFull groups several paraphrased questions under one answer
type KnowledgeItemFull struct {
	ID        string
	Category  Category
	Questions []string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snippet is a short admin-curated correction with the highest retrieval priority
type Snippet struct {
	ID        string
	Content   string
	CreatedAt time.Time
}

// LandingConfig carries the contact details shown to customers
type LandingConfig struct {
	ContactPhone   string `json:"contactPhone,omitempty" yaml:"contact_phone"`
	ContactEmail   string `json:"contactEmail,omitempty" yaml:"contact_email"`
	ContactAddress string `json:"contactAddress,omitempty" yaml:"contact_address"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" yaml:"whatsapp_number"`
}

// Default contact details used when the landing configuration leaves a field empty.
const (
	DefaultContactPhone   = "01272000075"
	DefaultContactEmail   = "support@modernsoft.com"
	DefaultContactAddress = "برج لؤلؤة الهندسة, بجوار كلية الهندسة_شبين الكوم_المنوفية"
)

// WithDefaults returns a copy of c where empty contact fields hold the defaults
func (c *LandingConfig) WithDefaults() LandingConfig {
	var out LandingConfig
	if c != nil {
		out = *c
	}
	if strings.TrimSpace(out.ContactPhone) == "" {
		out.ContactPhone = DefaultContactPhone
	}
	if strings.TrimSpace(out.ContactEmail) == "" {
		out.ContactEmail = DefaultContactEmail
	}
	if strings.TrimSpace(out.ContactAddress) == "" {
		out.ContactAddress = DefaultContactAddress
	}
	return out
}

// FlattenKnowledge derives the flat records of a structured item, one per paraphrase.
// IDs take the form "{id}_q{index}" and the category becomes the only tag.
func FlattenKnowledge(item *KnowledgeItemFull) []KnowledgeItem {
	if item == nil {
		return nil
	}
	out := make([]KnowledgeItem, 0, len(item.Questions))
	for i, q := range item.Questions {
		out = append(out, KnowledgeItem{
			ID:       fmt.Sprintf("%s_q%d", item.ID, i),
			Question: q,
			Answer:   item.Answer,
			Tags:     []string{string(item.Category)},
		})
	}
	return out
}

// ValidateKnowledgeItemFull validates a structured knowledge item
func ValidateKnowledgeItemFull(k *KnowledgeItemFull) error {
	if k == nil {
		return fmt.Errorf("knowledge item cannot be nil")
	}

	if strings.TrimSpace(k.ID) == "" {
		return fmt.Errorf("knowledge item ID is required")
	}

	if !k.Category.IsValid() {
		return fmt.Errorf("knowledge item Category is invalid: %s", k.Category)
	}

	if len(k.Questions) == 0 {
		return fmt.Errorf("knowledge item needs at least one question")
	}

	for i, q := range k.Questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("knowledge item question %d is empty", i)
		}
	}

	if strings.TrimSpace(k.Answer) == "" {
		return fmt.Errorf("knowledge item Answer is required")
	}

	return nil
}

// ValidateSnippet validates a Snippet instance
func ValidateSnippet(s *Snippet) error {
	if s == nil {
		return fmt.Errorf("snippet cannot be nil")
	}

	if strings.TrimSpace(s.Content) == "" {
		return fmt.Errorf("snippet Content is required")
	}

	return nil
}
