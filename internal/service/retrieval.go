package service

import (
	"sort"
	"strings"
)

// Source names the knowledge source a SearchResult came from.
type Source string

const (
	SourceDocs     Source = "docs"
	SourceKB       Source = "kb"
	SourceSnippets Source = "snippets"
)

// SearchResult is a scored candidate answer, valid for one turn.
type SearchResult struct {
	Score   int
	Content string
	Source  Source
	Path    string
	// ItemID identifies the knowledge item behind a kb result.
	ItemID string
}

// Scoring weights and thresholds. They are kept exactly as tuned; changing
// them needs a regression corpus.
const (
	snippetOccurrenceWeight = 4
	snippetMaxResults       = 2
	snippetAcceptScore      = 10
	snippetContentLimit     = 500

	kbExactScore          = 100
	kbTokenWeight         = 15
	kbKeywordWeight       = 10
	kbCoverageBonus       = 25
	kbAnswerKeywordWeight = 5
	kbCoverageRatio       = 0.6
	kbFlatScanBelow       = 30
	kbAcceptScore         = 30

	flatQuestionKeywordWeight = 20
	flatAnswerKeywordWeight   = 10
	flatCoverageBonus         = 30

	docOccurrenceWeight    = 3
	docQueryWordWeight     = 5
	docTitleKeywordWeight  = 15
	docTitlePathBonus      = 10
	docCategoryBonus       = 20
	docBulletKeywordWeight = 8
	docMaxResults          = 5
	docAcceptScore         = 5
	docContentLimit        = 600
)

// SearchSnippets ranks admin snippets by keyword occurrences and keeps the top two.
func SearchSnippets(snap *Snapshot, text string) []SearchResult {
	return searchSnippets(snap, analyze(text))
}

func searchSnippets(snap *Snapshot, q query) []SearchResult {
	var results []SearchResult
	for _, s := range snap.Snippets {
		content := Normalize(s.Content)
		score := 0
		for _, kw := range q.keywords {
			score += strings.Count(content, kw) * snippetOccurrenceWeight
		}
		if score > 0 {
			results = append(results, SearchResult{
				Score:   score,
				Content: truncateRunes(s.Content, snippetContentLimit),
				Source:  SourceSnippets,
			})
		}
	}
	return topResults(results, snippetMaxResults)
}

// SearchKB finds the best structured knowledge item for text, falling back to
// the flat list when the structured match is weak. It returns nil unless the
// winner clears the acceptance threshold.
func SearchKB(snap *Snapshot, text string) *SearchResult {
	return searchKB(snap, analyze(text))
}

func searchKB(snap *Snapshot, q query) *SearchResult {
	if q.normalized == "" {
		return nil
	}

	tokens := q.tokens(1)
	var best *SearchResult
	bestScore := 0
	bestExact := false

	// An item with an exact paraphrase outranks any item that only
	// accumulated overlap, whatever the totals.
	for i := range snap.StructuredKB {
		item := &snap.StructuredKB[i]
		score, exact := scoreStructuredItem(item.Questions, item.Answer, q, tokens)
		if (exact && !bestExact) || (exact == bestExact && score > bestScore) {
			bestScore = score
			bestExact = exact
			best = &SearchResult{Score: score, Content: item.Answer, Source: SourceKB, ItemID: item.ID}
		}
	}

	if bestScore < kbFlatScanBelow {
		words := strings.Fields(q.normalized)
		for i := range snap.FlatKB {
			item := &snap.FlatKB[i]
			score := scoreFlatItem(item.Question, item.Answer, q, words)
			if score > bestScore {
				bestScore = score
				best = &SearchResult{Score: score, Content: item.Answer, Source: SourceKB, ItemID: item.ID}
			}
		}
	}

	if bestScore > kbAcceptScore {
		return best
	}
	return nil
}

// scoreStructuredItem sums the overlap of every paraphrase with the query and
// adds the answer bonus. A paraphrase that contains the query, or is contained
// in it, sets the paraphrase score to kbExactScore, ends the scan and reports
// exact.
func scoreStructuredItem(questions []string, answer string, q query, tokens []string) (score int, exact bool) {
	for _, question := range questions {
		qn := Normalize(question)
		if qn == "" {
			continue
		}
		if exactParaphrase(qn, q) {
			score = kbExactScore
			exact = true
			break
		}
		score += paraphraseOverlap(qn, q, tokens)
	}

	answerNormalized := Normalize(answer)
	for _, kw := range q.keywords {
		if strings.Contains(answerNormalized, kw) {
			score += kbAnswerKeywordWeight
		}
	}
	return score, exact
}

func exactParaphrase(paraphrase string, q query) bool {
	return strings.Contains(paraphrase, q.normalized) || strings.Contains(q.normalized, paraphrase)
}

func paraphraseOverlap(paraphrase string, q query, tokens []string) int {
	score := 0
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(paraphrase, tok) {
			hits++
			score += kbTokenWeight
		}
	}
	for _, kw := range q.keywords {
		if strings.Contains(paraphrase, kw) {
			score += kbKeywordWeight
		}
	}
	if hits > 0 && float64(hits) >= float64(len(tokens))*kbCoverageRatio {
		score += kbCoverageBonus
	}
	return score
}

func scoreFlatItem(question, answer string, q query, words []string) int {
	qn := Normalize(question)
	an := Normalize(answer)
	if strings.Contains(qn, q.normalized) || strings.Contains(an, q.normalized) {
		return kbExactScore
	}

	score := 0
	for _, kw := range q.keywords {
		if strings.Contains(qn, kw) {
			score += flatQuestionKeywordWeight
		}
		if strings.Contains(an, kw) {
			score += flatAnswerKeywordWeight
		}
	}

	hits := 0
	for _, w := range words {
		if strings.Contains(qn, w) {
			hits++
		}
	}
	if hits > 0 && float64(hits) >= float64(len(words))*kbCoverageRatio {
		score += flatCoverageBonus
	}
	return score
}

// SearchDocs ranks documentation sections for text and keeps the top five.
// intent may be nil.
func SearchDocs(snap *Snapshot, text string, intent *DetectedIntent) []SearchResult {
	return searchDocs(snap, analyze(text), intent)
}

func searchDocs(snap *Snapshot, q query, intent *DetectedIntent) []SearchResult {
	if q.normalized == "" {
		return nil
	}

	words := q.tokens(2)
	var results []SearchResult

	for _, sec := range snap.Sections {
		body := Normalize(sec.Body)
		score := 0

		for _, kw := range q.keywords {
			score += strings.Count(body, kw) * docOccurrenceWeight
		}
		for _, w := range words {
			if strings.Contains(body, w) {
				score += docQueryWordWeight
			}
		}

		if sec.Title != "" {
			title := Normalize(sec.Title)
			for _, kw := range q.keywords {
				if strings.Contains(title, kw) {
					score += docTitleKeywordWeight
				}
			}
			if officialPathPattern.MatchString(sec.Title) {
				score += docTitlePathBonus
			}
		}

		if intent != nil && strings.Contains(body, string(intent.Intent.Category)) {
			score += docCategoryBonus
		}

		for _, item := range bulletLinePattern.FindAllString(sec.Body, -1) {
			itemNormalized := Normalize(item)
			for _, kw := range q.keywords {
				if strings.Contains(itemNormalized, kw) {
					score += docBulletKeywordWeight
				}
			}
		}

		if score > 0 {
			results = append(results, SearchResult{
				Score:   score,
				Content: truncateRunes(sec.Body, docContentLimit),
				Source:  SourceDocs,
				Path:    sec.Path,
			})
		}
	}

	return topResults(results, docMaxResults)
}

// topResults sorts by score descending, keeping input order among ties.
func topResults(results []SearchResult, n int) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > n {
		results = results[:n]
	}
	return results
}
