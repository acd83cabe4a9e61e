// Package summarizer produces the short corpus overview shown after ingestion.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	termPattern     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]+`)
)

const (
	defaultMaxSentences = 3
	// leading words kept from a document with no sentence punctuation
	fallbackWords = 30
)

// Summarizer picks the sentences that carry terms shared across documents.
// Every document contributes its best sentence before any contributes a second.
type Summarizer struct {
	stopwords map[string]struct{}
}

// New returns a Summarizer with the built-in English stopword list.
func New() *Summarizer {
	return &Summarizer{stopwords: defaultStopwords()}
}

type sentence struct {
	doc   int
	pos   int
	text  string
	score float64
}

// Summarize returns at most maxSentences sentences from documents, in
// document order.
func (s *Summarizer) Summarize(documents []string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = defaultMaxSentences
	}

	// df counts the documents a term appears in, tf its corpus-wide count.
	df := make(map[string]int)
	tf := make(map[string]int)
	var perDoc [][]sentence
	for _, doc := range documents {
		parts := splitSentences(doc)
		if len(parts) == 0 {
			continue
		}
		seen := make(map[string]struct{})
		for _, t := range s.terms(doc) {
			tf[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
		sents := make([]sentence, len(parts))
		for i, p := range parts {
			sents[i] = sentence{doc: len(perDoc), pos: i, text: p}
		}
		perDoc = append(perDoc, sents)
	}

	for _, sents := range perDoc {
		for i := range sents {
			terms := s.terms(sents[i].text)
			if len(terms) == 0 {
				continue
			}
			total := 0.0
			for _, t := range terms {
				total += float64(df[t]) * (1 + math.Log(float64(tf[t])))
			}
			sents[i].score = total / math.Sqrt(float64(len(terms)))
		}
		sort.SliceStable(sents, func(i, j int) bool { return sents[i].score > sents[j].score })
	}

	var picked []sentence
	for round := 0; len(picked) < maxSentences; round++ {
		var candidates []sentence
		for _, sents := range perDoc {
			if round < len(sents) {
				candidates = append(candidates, sents[round])
			}
		}
		if len(candidates) == 0 {
			break
		}
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
		for _, c := range candidates {
			if len(picked) == maxSentences {
				break
			}
			picked = append(picked, c)
		}
	}

	sort.Slice(picked, func(i, j int) bool {
		if picked[i].doc != picked[j].doc {
			return picked[i].doc < picked[j].doc
		}
		return picked[i].pos < picked[j].pos
	})
	out := make([]string, len(picked))
	for i, p := range picked {
		out[i] = p.text
	}
	return strings.Join(out, " "), nil
}

// splitSentences returns the punctuated sentences of doc. Unpunctuated text,
// typical of transcripts, yields its leading words as a single sentence.
func splitSentences(doc string) []string {
	var out []string
	for _, m := range sentencePattern.FindAllString(doc, -1) {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	if len(out) > 0 {
		return out
	}
	words := strings.Fields(doc)
	switch {
	case len(words) == 0:
		return nil
	case len(words) > fallbackWords:
		return []string{strings.Join(words[:fallbackWords], " ") + "..."}
	default:
		return []string{strings.Join(words, " ")}
	}
}

func (s *Summarizer) terms(text string) []string {
	raw := termPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := s.stopwords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
