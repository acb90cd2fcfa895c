package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

const (
	fallbackExcerptLimit = 200
	rushedPathLines      = 2
)

var genericClarifications = []string{"عايز تعرف إيه بالظبط؟"}

// clarifications covers every catalogue intent.
var clarifications = map[domain.IntentName][]string{
	domain.IntentSalesInvoice: {
		"عايز تعمل فاتورة مبيعات جديدة؟",
		"عايز تعرف منين تفتح فاتورة المبيعات؟",
		"عايز تعرف إزاي تعمل فاتورة مبيعات؟",
	},
	domain.IntentSalesReturn: genericClarifications,
	domain.IntentInventory: {
		"عايز تعمل جرد للمخزن؟",
		"عايز تعرف منين تفتح شاشة المخازن؟",
		"عايز تعرف إزاي تعمل جرد؟",
	},
	domain.IntentPurchases: genericClarifications,
	domain.IntentSuppliers: genericClarifications,
	domain.IntentCustomers: genericClarifications,
	domain.IntentAccounts:  genericClarifications,
	domain.IntentReports:   genericClarifications,
	domain.IntentWhere: {
		"عايز تعرف مكان إيه بالظبط؟",
		"عايز تفتح إيه في البرنامج؟",
		"عايز تعرف منين تفتح إيه؟",
	},
	domain.IntentHow: {
		"عايز تعرف إزاي تعمل إيه بالظبط؟",
		"عايز خطوات عمل إيه؟",
		"عايز طريقة عمل إيه؟",
	},
	domain.IntentProblem: genericClarifications,
	domain.IntentContact: genericClarifications,
}

// fallback builds a clarifying non-answer. It never returns an empty string.
func (t *turn) fallback(docs []SearchResult) string {
	if len(docs) > 0 {
		best := docs[0]
		path := best.Path
		if path == "" {
			path = ExtractOfficialPath(best.Content)
		}
		if path != "" {
			return t.tone.Wrap(t.pathHint(path, best.Content), t.intent, t.emotion)
		}
	}

	phone := t.snap.Landing.ContactPhone
	email := t.snap.Landing.ContactEmail

	if t.intent != nil {
		pool, ok := clarifications[t.intent.Intent.Name]
		if !ok {
			pool = genericClarifications
		}
		question := pick(t.picker, pool)

		if t.emotion == domain.EmotionRushed {
			return t.tone.Wrap(
				fmt.Sprintf("ممكن توضح أكتر؟\n- %s\n\nأو اتصل بنا: %s", question, phone),
				t.intent, t.emotion)
		}
		return t.tone.Wrap(
			fmt.Sprintf("معلش، مش متأكد من السؤال بالظبط.\n\nممكن توضح أكتر؟ مثلاً:\n- %s\n- أو وصف المشكلة اللي حضرتك بتواجهها\n\nأو ممكن تتواصل معانا مباشرة على:\n📞 %s\n📧 %s\n\nاحنا معاك!", question, phone, email),
			t.intent, t.emotion)
	}

	if t.emotion == domain.EmotionRushed {
		return t.tone.Wrap(fmt.Sprintf("ممكن توضح أكتر؟\n\nاتصل بنا: %s", phone), nil, t.emotion)
	}
	return t.tone.Wrap(
		fmt.Sprintf("معلش، مش فاهم السؤال بالظبط.\n\nممكن توضح أكتر؟ مثلاً:\n- عايز تعمل إيه بالظبط؟\n- أو وصف المشكلة اللي حضرتك بتواجهها\n\nأو ممكن تتواصل معانا مباشرة على:\n📞 %s\n📧 %s\n\nاحنا معاك!", phone, email),
		nil, t.emotion)
}

func (t *turn) pathHint(path, content string) string {
	switch t.emotion {
	case domain.EmotionRushed:
		lines := firstLines(strings.Split(content, "\n"), rushedPathLines)
		return path + "\n\n" + strings.Join(lines, "\n")
	case domain.EmotionAngry:
		return fmt.Sprintf("متفهم الموقف! أقرب حاجة لسؤالك هي:\n\n%s\n\n%s\n\nلو تقدر توضح أكتر، هقدر أساعدك بشكل أدق.",
			path, truncateRunes(content, fallbackExcerptLimit))
	}
	return fmt.Sprintf("دلوقتي مش متأكد 100%% من السؤال بالظبط، بس أقرب حاجة ليه هي:\n\n%s\n\n%s\n\nلو تقدر توضح سؤالك أكتر (مثلاً: \"عايز أعمل إيه بالظبط؟\" أو \"عايز أعرف إيه؟\")، هقدر أساعدك بشكل أدق.",
		path, truncateRunes(content, fallbackExcerptLimit))
}
