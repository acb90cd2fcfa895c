package service

import (
	"strings"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

// Intent is a catalogue entry: a name, its business category and the
// dialect phrases that signal it. A phrase listed twice counts twice.
type Intent struct {
	Name     domain.IntentName
	Category domain.Category
	Triggers []string
}

// DetectedIntent is the classifier verdict for one utterance.
type DetectedIntent struct {
	Intent          Intent
	Score           int
	Confidence      float64
	MatchedTriggers []string
}

const (
	triggerPhraseWeight = 10
	triggerWordWeight   = 3
	triggerWordRatio    = 0.6
	intentMinScore      = 5
)

var catalogue = []Intent{
	{
		Name:     domain.IntentSalesInvoice,
		Category: domain.CategorySales,
		Triggers: []string{"فاتورة مبيعات", "فاتورة بيع", "فاتورة عميل", "فاتورة", "بيع", "مبيعات", "فاتورة المبيعات", "فاتورة البيع", "فاتورة العميل", "فاتورة جديدة", "عمل فاتورة", "إضافة فاتورة", "فاتورة جديدة", "فاتورة مبيعات جديدة"},
	},
	{
		Name:     domain.IntentSalesReturn,
		Category: domain.CategorySales,
		Triggers: []string{"مرتجع مبيعات", "مرتجع بيع", "مرتجع", "إرجاع", "إرجاع فاتورة", "مرتجع فاتورة", "إرجاع مبيعات"},
	},
	{
		Name:     domain.IntentInventory,
		Category: domain.CategoryInventory,
		Triggers: []string{"مخزن", "مخازن", "جرد", "مخزون", "أصناف", "كميات", "جرد مخزن", "جرد المخزن", "مخازن", "المخازن", "جرد أصناف", "كمية أصناف"},
	},
	{
		Name:     domain.IntentPurchases,
		Category: domain.CategoryPurchases,
		Triggers: []string{"شراء", "مشتريات", "فاتورة شراء", "فاتورة مشتريات", "شراء أصناف", "مشتريات جديدة", "فاتورة شراء جديدة"},
	},
	{
		Name:     domain.IntentSuppliers,
		Category: domain.CategorySuppliers,
		Triggers: []string{"مورد", "موردين", "مورد جديد", "إضافة مورد", "قائمة الموردين", "الموردين", "مورد", "موردين"},
	},
	{
		Name:     domain.IntentCustomers,
		Category: domain.CategoryCustomers,
		Triggers: []string{"عميل", "عملاء", "عميل جديد", "إضافة عميل", "قائمة العملاء", "العملاء", "عميل", "عملاء"},
	},
	{
		Name:     domain.IntentAccounts,
		Category: domain.CategoryAccounts,
		Triggers: []string{"حساب", "حسابات", "كشف حساب", "رصيد", "مديونية", "الحسابات", "حساب", "حسابات"},
	},
	{
		Name:     domain.IntentReports,
		Category: domain.CategoryReports,
		Triggers: []string{"تقرير", "تقارير", "كشف", "ملخص", "إحصائيات", "تقرير مبيعات", "تقرير مخزون", "تقرير مشتريات"},
	},
	{
		Name:     domain.IntentWhere,
		Category: domain.CategoryNavigation,
		Triggers: []string{"أين", "منين", "فين", "مكان", "موقع", "ألاقي", "أجيب", "أين أجد", "منين ألاقي", "فين ألاقي", "أين موجود", "مكانه فين"},
	},
	{
		Name:     domain.IntentHow,
		Category: domain.CategoryHowTo,
		Triggers: []string{"كيف", "ازاي", "إزاي", "طريقة", "خطوات", "كيفية", "ازاي أعمل", "كيف أعمل", "طريقة عمل", "خطوات عمل"},
	},
	{
		Name:     domain.IntentProblem,
		Category: domain.CategoryTroubleshooting,
		Triggers: []string{"مشكلة", "مشاكل", "خطأ", "إيرور", "غلط", "عطل", "مش شغال", "مش بيشتغل", "مشكلة في", "خطأ في", "إيرور في"},
	},
	{
		Name:     domain.IntentContact,
		Category: domain.CategoryContact,
		Triggers: []string{"رقم", "تليفون", "اتصال", "هاتف", "عنوان", "إيميل", "بريد", "email", "تواصل", "اتصل", "اتصالات"},
	},
}

type preparedTrigger struct {
	phrase     string
	normalized string
	words      []string
}

type preparedIntent struct {
	intent   Intent
	triggers []preparedTrigger
}

var preparedCatalogue = func() []preparedIntent {
	out := make([]preparedIntent, 0, len(catalogue))
	for _, in := range catalogue {
		p := preparedIntent{intent: in}
		for _, tr := range in.Triggers {
			n := Normalize(tr)
			p.triggers = append(p.triggers, preparedTrigger{
				phrase:     tr,
				normalized: n,
				words:      strings.Fields(n),
			})
		}
		out = append(out, p)
	}
	return out
}()

// Catalogue returns a copy of the intent catalogue in scoring order.
func Catalogue() []Intent {
	out := make([]Intent, len(catalogue))
	for i, in := range catalogue {
		in.Triggers = append([]string(nil), in.Triggers...)
		out[i] = in
	}
	return out
}

// DetectIntent scores text against the catalogue and returns the best intent,
// or nil when no intent scores above the minimum.
func DetectIntent(text string) *DetectedIntent {
	return detectIntent(analyze(text))
}

func detectIntent(q query) *DetectedIntent {
	var best *DetectedIntent
	bestScore := 0

	for _, p := range preparedCatalogue {
		score := 0
		var matched []string
		seen := make(map[string]bool)
		record := func(phrase string) {
			if !seen[phrase] {
				seen[phrase] = true
				matched = append(matched, phrase)
			}
		}

		for _, tr := range p.triggers {
			if tr.normalized != "" && strings.Contains(q.normalized, tr.normalized) {
				score += triggerPhraseWeight
				record(tr.phrase)
			}

			hits := 0
			for _, w := range tr.words {
				if q.hasKeyword(w) {
					hits++
					score += triggerWordWeight
				}
			}
			if hits > 0 && float64(hits) >= float64(len(tr.words))*triggerWordRatio {
				record(tr.phrase)
			}
		}

		if score > bestScore && score > intentMinScore {
			bestScore = score
			best = &DetectedIntent{
				Intent:          p.intent,
				Score:           score,
				Confidence:      min(float64(score)/10, 1),
				MatchedTriggers: matched,
			}
		}
	}

	return best
}
