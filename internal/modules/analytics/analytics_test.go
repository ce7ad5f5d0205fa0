package analytics

import (
	"strings"
	"testing"
)

func TestAnalyzeEmptyContent(t *testing.T) {
	t.Parallel()
	r := Analyze(Input{Title: "Anything"})
	if r.WordCount != 0 {
		t.Errorf("WordCount = %d, want 0", r.WordCount)
	}
	if r.SEOScore != 0 {
		t.Errorf("SEOScore = %d, want 0 for empty content", r.SEOScore)
	}
	if r.ReadingEase != 0 {
		t.Errorf("ReadingEase = %v, want 0 for empty content", r.ReadingEase)
	}
}

func TestWordCountIgnoresMarkup(t *testing.T) {
	t.Parallel()
	md := "# Heading\n\nSome **bold** words here.\n\n```\ncode block ignored\n```\n"
	got := WordCount(md)
	// heading + some bold words here, nothing from the code fence
	if got != 5 {
		t.Errorf("WordCount = %d, want 5", got)
	}
}

func TestKeywordDensityMultiWordPhrase(t *testing.T) {
	t.Parallel()
	words := strings.Fields("coffee beans are great and coffee beans are cheap")
	out := keywordDensities([]string{"coffee beans"}, words)
	if len(out) != 1 {
		t.Fatalf("got %d entries, want 1", len(out))
	}
	if out[0].Count != 2 {
		t.Errorf("Count = %d, want 2", out[0].Count)
	}
	// 2 matches x 2 words / 10 words = 40%
	if out[0].Density != 40 {
		t.Errorf("Density = %v, want 40", out[0].Density)
	}
}

func TestKeywordDensityCaseInsensitive(t *testing.T) {
	t.Parallel()
	out := keywordDensities([]string{"Go"}, []string{"go", "GO", "going"})
	if out[0].Count != 2 {
		t.Errorf("Count = %d, want 2 (whole words only)", out[0].Count)
	}
}

func TestCountSyllables(t *testing.T) {
	t.Parallel()
	cases := map[string]int{
		"cat":    1,
		"idea":   2,
		"make":   1,
		"coding": 2,
		"a":      1,
		"rhythm": 1,
	}
	for word, want := range cases {
		if got := countSyllables(word); got != want {
			t.Errorf("countSyllables(%q) = %d, want %d", word, got, want)
		}
	}
}

func TestFleschReadingEaseBounds(t *testing.T) {
	t.Parallel()
	easy := strings.Fields("the cat sat on the mat")
	if got := fleschReadingEase(easy, 1); got <= 0 || got > 100 {
		t.Errorf("easy text ease = %v, want within (0, 100]", got)
	}

	var hard []string
	for i := 0; i < 50; i++ {
		hard = append(hard, "incomprehensibility")
	}
	if got := fleschReadingEase(hard, 1); got != 0 {
		t.Errorf("hard text ease = %v, want clamped to 0", got)
	}
}

func TestRecommendations(t *testing.T) {
	t.Parallel()
	r := Analyze(Input{
		Title:    "Completely unrelated title",
		Keywords: []string{"espresso"},
		Markdown: "Short body about coffee.",
	})

	wantSubstrings := []string{"meta description", "keyword in the title", "thin"}
	for _, want := range wantSubstrings {
		found := false
		for _, rec := range r.Recommendations {
			if strings.Contains(strings.ToLower(rec), want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing recommendation containing %q in %v", want, r.Recommendations)
		}
	}
}

func TestScoreFullMarks(t *testing.T) {
	t.Parallel()
	body := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	r := Analyze(Input{
		Title:           "Espresso guide",
		MetaDescription: "A guide to espresso.",
		Keywords:        []string{"espresso"},
		Markdown:        body,
	})
	if r.SEOScore != 100 {
		t.Errorf("SEOScore = %d, want 100, recs: %v", r.SEOScore, r.Recommendations)
	}
}
