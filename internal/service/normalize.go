package service

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeRule rewrites every occurrence of From with To.
type NormalizeRule struct {
	From string
	To   string
}

// dialectRules run before letter folding because they key on the original
// hamza and taa-marbuta forms. Definite plurals precede bare plurals so the
// article is consumed together with the noun.
var dialectRules = []NormalizeRule{
	{"منين", "أين"},
	{"فين", "أين"},
	{"ألاقي", "أين"},
	{"أجيب", "أين"},

	{"ازاي", "كيف"},
	{"إزاي", "كيف"},

	{"فاتورة المبيعات", "فاتورة مبيعات"},
	{"فاتورة البيع", "فاتورة مبيعات"},
	{"فاتورة العميل", "فاتورة مبيعات"},

	{"المخازن", "مخزن"},
	{"مخازن", "مخزن"},

	{"الموردين", "مورد"},
	{"موردين", "مورد"},

	{"العملاء", "عميل"},
	{"عملاء", "عميل"},

	{"الحسابات", "حساب"},
	{"حسابات", "حساب"},

	{"تقارير", "تقرير"},
}

const stopPunctuation = ".,!?;:،؛؟"

// maxNormalizePasses bounds the fixpoint loop in Normalize.
const maxNormalizePasses = 8

// Normalize canonicalizes Arabic text for matching. The pipeline lower-cases,
// replaces punctuation with spaces, applies dialectRules, folds letter variants,
// strips diacritics and collapses whitespace. It repeats until the output is
// stable, so Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	out := text
	for i := 0; i < maxNormalizePasses; i++ {
		next := normalizePass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func normalizePass(text string) string {
	s := strings.ToLower(strings.TrimSpace(norm.NFC.String(text)))
	s = strings.Map(punctuationToSpace, s)
	s = applyRules(s, dialectRules)
	s = foldLetters(s)
	return strings.Join(strings.Fields(s), " ")
}

func applyRules(text string, rules []NormalizeRule) string {
	for _, r := range rules {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}

func punctuationToSpace(r rune) rune {
	if strings.ContainsRune(stopPunctuation, r) {
		return ' '
	}
	return r
}

func foldLetters(s string) string {
	t := transform.Chain(runes.Map(foldLetter), runes.Remove(runes.Predicate(isArabicDiacritic)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func foldLetter(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ':
		return 'ا'
	case 'ى':
		return 'ي'
	case 'ة':
		return 'ه'
	case 'ؤ', 'ئ':
		return 'ي'
	}
	return r
}

// isArabicDiacritic matches tashkeel (U+064B..U+065F) and the superscript alef.
func isArabicDiacritic(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670
}

// runeLen counts characters rather than bytes.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateRunes cuts s to at most n characters.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
