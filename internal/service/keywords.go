package service

import "strings"

// stopWordList holds prepositions, pronouns, demonstratives and conjunctions.
// The list is normalized once so it matches normalized tokens.
var stopWordList = []string{
	"في", "من", "على", "إلى", "عن", "مع", "هو", "هي", "أن", "إن",
	"ال", "اللي", "الذي", "التي", "لي", "ل", "ب", "ك", "و", "أو",
	"لكن", "ممكن", "عشان", "ه", "دي", "دا", "ده", "دول", "كده", "كدا",
}

var stopWords = func() map[string]struct{} {
	set := make(map[string]struct{}, len(stopWordList))
	for _, w := range stopWordList {
		set[Normalize(w)] = struct{}{}
	}
	return set
}()

// ExtractKeywords normalizes text and returns its meaningful tokens in order.
// The result may be empty.
func ExtractKeywords(text string) []string {
	return keywordsOf(Normalize(text))
}

func keywordsOf(normalized string) []string {
	var out []string
	for _, w := range strings.Fields(normalized) {
		if runeLen(w) <= 1 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// query is a user utterance analyzed once per turn.
type query struct {
	raw        string
	normalized string
	keywords   []string
	keywordSet map[string]struct{}
}

func analyze(text string) query {
	normalized := Normalize(text)
	keywords := keywordsOf(normalized)
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[k] = struct{}{}
	}
	return query{
		raw:        text,
		normalized: normalized,
		keywords:   keywords,
		keywordSet: set,
	}
}

func (q query) hasKeyword(w string) bool {
	_, ok := q.keywordSet[w]
	return ok
}

// tokens returns the normalized words longer than minLen characters.
func (q query) tokens(minLen int) []string {
	var out []string
	for _, w := range strings.Fields(q.normalized) {
		if runeLen(w) > minLen {
			out = append(out, w)
		}
	}
	return out
}
