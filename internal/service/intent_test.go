package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		text     string
		name     domain.IntentName
		category domain.Category
	}{
		{"فاتورة بيع", domain.IntentSalesInvoice, domain.CategorySales},
		{"مرتجع", domain.IntentSalesReturn, domain.CategorySales},
		{"جرد", domain.IntentInventory, domain.CategoryInventory},
		{"عندي مشكلة في البرنامج", domain.IntentProblem, domain.CategoryTroubleshooting},
		{"رقم التليفون كام", domain.IntentContact, domain.CategoryContact},
		{"مكان", domain.IntentWhere, domain.CategoryNavigation},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := DetectIntent(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.name, got.Intent.Name)
			assert.Equal(t, tt.category, got.Intent.Category)
			assert.Greater(t, got.Score, intentMinScore)
			assert.NotEmpty(t, got.MatchedTriggers)
		})
	}
}

func TestDetectIntent_ScoreAndConfidence(t *testing.T) {
	got := DetectIntent("فاتورة بيع")
	require.NotNil(t, got)

	assert.Contains(t, got.MatchedTriggers, "فاتورة بيع")
	assert.Contains(t, got.MatchedTriggers, "فاتورة")
	assert.Equal(t, 1.0, got.Confidence, "confidence is capped at 1")

	weak := DetectIntent("مكان")
	require.NotNil(t, weak)
	assert.Equal(t, triggerPhraseWeight+triggerWordWeight, weak.Score)
	assert.Equal(t, 1.0, weak.Confidence)
}

func TestDetectIntent_RepeatedTriggersCountTwice(t *testing.T) {
	counts := make(map[string]int)
	for _, in := range Catalogue() {
		if in.Name != domain.IntentSuppliers {
			continue
		}
		for _, tr := range in.Triggers {
			counts[tr]++
		}
	}
	assert.Equal(t, 2, counts["مورد"])
	assert.Equal(t, 2, counts["موردين"])

	// The supplier triggers outweigh the invoice words only with their repeats.
	got := DetectIntent("فاتورة بيع مورد")
	require.NotNil(t, got)
	assert.Equal(t, domain.IntentSuppliers, got.Intent.Name)
}

func TestDetectIntent_NoMatch(t *testing.T) {
	for _, text := range []string{"", "   ", "مرحبا", "hello there"} {
		assert.Nil(t, DetectIntent(text), "text %q", text)
	}
}

func TestCatalogue(t *testing.T) {
	cat := Catalogue()
	require.Len(t, cat, 12)

	seen := make(map[domain.IntentName]bool)
	for _, in := range cat {
		assert.False(t, seen[in.Name], "duplicate intent %s", in.Name)
		seen[in.Name] = true

		assert.True(t, in.Category.IsValid(), "intent %s", in.Name)
		assert.NotEmpty(t, in.Triggers, "intent %s", in.Name)
		assert.Contains(t, intentPrefixes, in.Name, "every intent has a prefix pool")
		assert.Contains(t, clarifications, in.Name, "every intent has clarifying questions")
		assert.Contains(t, categoryLabels, in.Category, "every category has a label")
	}

	cat[0].Triggers[0] = "changed"
	assert.NotEqual(t, "changed", Catalogue()[0].Triggers[0], "Catalogue returns a copy")
}

func TestClassifyEmotion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Emotion
	}{
		{"angry beats short", "!!مش شغال", domain.EmotionAngry},
		{"angry lexicon", "البرنامج مش شغال خالص من امبارح", domain.EmotionAngry},
		{"exclamation", "لو سمحت الفاتورة مش ظاهرة عندي في الشاشة!", domain.EmotionAngry},
		{"shouting", "الفاتورة فيها ERROR غريب جدا النهارده الصبح", domain.EmotionAngry},
		{"angry beats rushed lexicon", "مشكلة في البرنامج عايز حلها بسرعة لو سمحت", domain.EmotionAngry},
		{"rushed lexicon", "عايز التقرير بسرعة لو سمحت يا فندم", domain.EmotionRushed},
		{"rushed by length", "فاتورة جديدة", domain.EmotionRushed},
		{"five words is still short", "عايز اعمل فاتورة مبيعات جديدة", domain.EmotionRushed},
		{"empty", "   ", domain.EmotionRushed},
		{"normal", "لو سمحت عايز أعرف إزاي أعمل فاتورة مبيعات جديدة", domain.EmotionNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyEmotion(tt.text))
		})
	}
}
