// Package analytics computes derived SEO and readability metrics for an
// article. Everything here is pure and deterministic; results are recomputed
// on every request and never persisted.
package analytics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/draftflow/core/internal/modules/markdown"
)

// Report is the derived-analytics block attached to article detail responses.
type Report struct {
	WordCount       int              `json:"word_count"`
	SentenceCount   int              `json:"sentence_count"`
	ReadingEase     float64          `json:"reading_ease"`
	SEOScore        int              `json:"seo_score"`
	KeywordDensity  []KeywordDensity `json:"keyword_density"`
	Recommendations []string         `json:"recommendations"`
}

// KeywordDensity is the share of total words taken by one keyword.
type KeywordDensity struct {
	Keyword string  `json:"keyword"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// Input carries the article fields the report is derived from.
type Input struct {
	Title           string
	MetaDescription string
	Keywords        []string
	Markdown        string
}

var wordPattern = regexp.MustCompile(`[A-Za-z0-9']+`)

// Analyze produces the full derived report for an article.
func Analyze(in Input) Report {
	text := markdown.PlainText(in.Markdown)
	words := wordPattern.FindAllString(text, -1)
	sentences := countSentences(text)

	r := Report{
		WordCount:      len(words),
		SentenceCount:  sentences,
		ReadingEase:    fleschReadingEase(words, sentences),
		KeywordDensity: keywordDensities(in.Keywords, words),
	}
	r.Recommendations = recommend(in, r)
	r.SEOScore = score(in, r)
	return r
}

// WordCount returns just the prose word count of a markdown document.
func WordCount(markdownText string) int {
	return len(wordPattern.FindAllString(markdown.PlainText(markdownText), -1))
}

func keywordDensities(keywords []string, words []string) []KeywordDensity {
	out := make([]KeywordDensity, 0, len(keywords))
	if len(keywords) == 0 {
		return out
	}

	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}

	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		parts := wordPattern.FindAllString(strings.ToLower(kw), -1)
		count := 0
		if len(parts) > 0 {
			for i := 0; i+len(parts) <= len(lower); i++ {
				match := true
				for j, p := range parts {
					if lower[i+j] != p {
						match = false
						break
					}
				}
				if match {
					count++
				}
			}
		}
		density := 0.0
		if len(words) > 0 {
			density = round2(float64(count*len(parts)) / float64(len(words)) * 100)
		}
		out = append(out, KeywordDensity{Keyword: kw, Count: count, Density: density})
	}
	return out
}

func countSentences(text string) int {
	count := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			count++
		}
	}
	return count
}

// fleschReadingEase is the simplified Flesch score with a heuristic syllable
// counter, clamped to [0, 100].
func fleschReadingEase(words []string, sentences int) float64 {
	if len(words) == 0 {
		return 0
	}
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	score := 206.835 -
		1.015*(float64(len(words))/float64(sentences)) -
		84.6*(float64(syllables)/float64(len(words)))

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return round2(score)
}

// countSyllables estimates syllables by counting vowel groups, discounting a
// trailing silent 'e'. Every word counts at least one.
func countSyllables(word string) int {
	w := strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range w {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(w, "e") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

const (
	minWordCount   = 300
	lowReadability = 40
)

func recommend(in Input, r Report) []string {
	var recs []string

	if strings.TrimSpace(in.MetaDescription) == "" {
		recs = append(recs, "Add a meta description.")
	}
	if len(in.Keywords) == 0 {
		recs = append(recs, "Add target keywords.")
	} else {
		titleLower := strings.ToLower(in.Title)
		inTitle := false
		for _, kw := range in.Keywords {
			if kw != "" && strings.Contains(titleLower, strings.ToLower(kw)) {
				inTitle = true
				break
			}
		}
		if !inTitle {
			recs = append(recs, "Include a target keyword in the title.")
		}
	}
	if r.WordCount > 0 && r.WordCount < minWordCount {
		recs = append(recs, fmt.Sprintf("Content is thin; aim for at least %d words.", minWordCount))
	}
	if r.WordCount > 0 && r.ReadingEase < lowReadability {
		recs = append(recs, "Readability is low; shorten sentences and simplify wording.")
	}
	return recs
}

// score folds presence checks and readability into a 0-100 composite.
func score(in Input, r Report) int {
	s := 100
	if strings.TrimSpace(in.MetaDescription) == "" {
		s -= 20
	}
	if len(in.Keywords) == 0 {
		s -= 20
	}
	if r.WordCount < minWordCount {
		s -= 20
	}
	if r.ReadingEase < lowReadability {
		s -= 15
	}
	if r.WordCount == 0 {
		s = 0
	}
	if s < 0 {
		s = 0
	}
	return s
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
