package service

import (
	"regexp"
	"strings"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

// namePatterns are tried in order; the first capture wins.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`اسمي\s+هو\s+([\p{L}\p{N}_]+)`),
	regexp.MustCompile(`اسمي\s+([\p{L}\p{N}_]+)`),
	regexp.MustCompile(`أنا\s+([\p{L}\p{N}_]+)`),
	regexp.MustCompile(`([\p{L}\p{N}_]+)\s+اسمي`),
	regexp.MustCompile(`my name is\s+([\p{L}\p{N}_]+)`),
	regexp.MustCompile(`i am\s+([\p{L}\p{N}_]+)`),
	regexp.MustCompile(`i'm\s+([\p{L}\p{N}_]+)`),
}

// categoryLabels holds the Arabic display name of every category.
var categoryLabels = map[domain.Category]string{
	domain.CategorySales:           "المبيعات",
	domain.CategoryInventory:       "المخازن",
	domain.CategoryPurchases:       "المشتريات",
	domain.CategorySuppliers:       "الموردين",
	domain.CategoryCustomers:       "العملاء",
	domain.CategoryAccounts:        "الحسابات",
	domain.CategoryReports:         "التقارير",
	domain.CategoryNavigation:      "أماكن الشاشات",
	domain.CategoryHowTo:           "طريقة الاستخدام",
	domain.CategoryTroubleshooting: "حل المشاكل",
	domain.CategoryContact:         "التواصل",
	domain.CategoryGeneral:         "موضوع عام",
}

const (
	summaryMinLen     = 20
	summaryExcerptLen = 50
)

// ExtractClientInfo scans the user turns of a conversation for the
// customer's name, a one-line summary and the last non-normal emotion.
func ExtractClientInfo(messages []domain.Message) domain.ClientInfo {
	info := domain.ClientInfo{
		Name:    domain.DefaultClientName,
		Summary: domain.DefaultSummary,
		Emotion: domain.EmotionNormal,
	}
	nameFound := false

	for _, m := range messages {
		if m.Role != domain.RoleUser {
			continue
		}
		text := strings.ToLower(m.Text)

		if e := ClassifyEmotion(m.Text); e != domain.EmotionNormal {
			info.Emotion = e
		}

		if !nameFound {
			if name := matchName(text); name != "" {
				info.Name = name
				nameFound = true
			}
		}

		if intent := DetectIntent(m.Text); intent != nil {
			info.Summary = "استفسار عن " + CategoryLabel(intent.Intent.Category)
		} else if runeLen(text) > summaryMinLen {
			info.Summary = truncateRunes(text, summaryExcerptLen) + "..."
		}
	}

	return info
}

// CategoryLabel returns the Arabic display name of c.
func CategoryLabel(c domain.Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func matchName(text string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(text); m != nil && m[1] != "" {
			return m[1]
		}
	}
	return ""
}
