// Package seed holds the built-in knowledge the support desk starts with.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

//go:embed corpus.yaml
var corpusYAML []byte

// Corpus is the decoded seed file.
type Corpus struct {
	CoreDocs  string               `yaml:"core_docs"`
	Landing   domain.LandingConfig `yaml:"landing"`
	Knowledge []Item               `yaml:"knowledge"`
}

// Item is one structured knowledge entry as written in the seed file.
type Item struct {
	ID        string   `yaml:"id"`
	Category  string   `yaml:"category"`
	Questions []string `yaml:"questions"`
	Answer    string   `yaml:"answer"`
}

// Load decodes the embedded corpus and validates every knowledge item.
func Load() (*Corpus, error) {
	return Parse(corpusYAML)
}

// Parse decodes a corpus document.
func Parse(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode seed corpus: %w", err)
	}
	seen := make(map[string]bool, len(c.Knowledge))
	for _, item := range c.KnowledgeItems() {
		if err := domain.ValidateKnowledgeItemFull(&item); err != nil {
			return nil, fmt.Errorf("seed item %s: %w", item.ID, err)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("seed item %s: duplicate id", item.ID)
		}
		seen[item.ID] = true
	}
	return &c, nil
}

// KnowledgeItems converts the seed entries into domain items.
func (c *Corpus) KnowledgeItems() []domain.KnowledgeItemFull {
	out := make([]domain.KnowledgeItemFull, 0, len(c.Knowledge))
	for _, it := range c.Knowledge {
		out = append(out, domain.KnowledgeItemFull{
			ID:        it.ID,
			Category:  domain.Category(it.Category),
			Questions: it.Questions,
			Answer:    it.Answer,
		})
	}
	return out
}
