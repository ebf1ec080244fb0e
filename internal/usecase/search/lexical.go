package search

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/trovato-shop/trovato/internal/domain"
)

// minKeywordLen drops stop-word-ish tokens without a stop-word list.
const minKeywordLen = 3

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// normalizeLexical lowercases, strips diacritics and flattens punctuation to
// spaces, so "Adidas Café-Racer" and "adidas cafe racer" score the same.
func normalizeLexical(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(diacriticStripper, s); err == nil {
		s = out
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// lexicalTerms normalizes keywords and drops the ones too short to score.
func lexicalTerms(keywords []string) []string {
	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if t := normalizeLexical(k); len(t) >= minKeywordLen {
			terms = append(terms, t)
		}
	}
	return terms
}

// scoreLexical ranks items against the extracted keywords. Per keyword a
// substring hit in the item text scores 1, a hit inside the item name scores
// 2 more, and a whole-word hit 1 more. Items scoring zero are excluded.
func scoreLexical(items []domain.Item, keywords []string) []domain.Match {
	terms := lexicalTerms(keywords)
	if len(terms) == 0 {
		return nil
	}

	matches := make([]domain.Match, 0, len(items))
	for _, it := range items {
		text := normalizeLexical(it.LexicalText())
		name := normalizeLexical(it.Name())
		words := " " + text + " "

		var score float64
		for _, t := range terms {
			if !strings.Contains(text, t) {
				continue
			}
			score++
			if strings.Contains(name, t) {
				score += 2
			}
			if strings.Contains(words, " "+t+" ") {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, domain.Match{Item: it, Score: score, Source: domain.RankLexical})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}
