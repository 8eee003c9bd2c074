package domain

import (
	"regexp"
	"strings"
)

// Complexity levels.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// Sentiment values.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentFormal   = "formal"
)

// DomainGeneral is reported when no subject keywords match.
const DomainGeneral = "general"

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

var (
	positiveWords = []string{"excellent", "great", "beautiful", "useful", "important", "good",
		"ممتاز", "رائع", "جميل", "مفيد", "مهم", "جيد"}
	negativeWords = []string{"bad", "problem", "error", "fail", "difficult", "painful", "scary",
		"سيء", "مشكلة", "خطأ", "فشل", "صعب", "مؤلم", "مخيف"}
	formalWords = []string{"please", "kindly", "regards", "sincerely", "apologize", "hereby",
		"يرجى", "نشكركم", "نعتذر", "نؤكد", "نشير", "نلاحظ"}
	technicalTerms = []string{"API", "URL", "HTTP", "HTML", "CSS", "JavaScript"}
)

// subject keywords, checked in order.
var domainKeywords = []struct {
	name     string
	keywords []string
}{
	{"medical", []string{"doctor", "disease", "treatment", "medicine", "surgery", "طبيب", "مرض", "علاج", "دواء", "جراحة"}},
	{"technical", []string{"programming", "computer", "technology", "system", "software", "برمجة", "كمبيوتر", "تقنية", "نظام", "برنامج"}},
	{"business", []string{"company", "sales", "investment", "market", "revenue", "شركة", "مبيعات", "استثمار", "سوق", "عمل"}},
	{"academic", []string{"research", "study", "university", "science", "theory", "بحث", "دراسة", "جامعة", "علم", "نظرية"}},
	{"legal", []string{"law", "court", "contract", "rights", "justice", "قانون", "محكمة", "عقد", "حق", "عدالة"}},
}

// TextInsights summarises the source text of a smart translation.
type TextInsights struct {
	Complexity          string  `json:"complexity"`
	AvgWordsPerSentence float64 `json:"avgWordsPerSentence"`
	SentenceCount       int     `json:"sentenceCount"`
	WordCount           int     `json:"wordCount"`
	Sentiment           string  `json:"sentiment"`
	Domain              string  `json:"domain"`
	HasTechnicalTerms   bool    `json:"hasTechnicalTerms"`
	Formality           string  `json:"formality"`
}

// AnalyzeText computes insights for text translated in mode.
func AnalyzeText(text string, mode Mode) TextInsights {
	words := strings.Fields(text)
	sentences := countSentences(text)

	var avg float64
	if sentences > 0 {
		avg = float64(len(words)) / float64(sentences)
	}

	return TextInsights{
		Complexity:          complexityFor(avg),
		AvgWordsPerSentence: avg,
		SentenceCount:       sentences,
		WordCount:           len(words),
		Sentiment:           Sentiment(text),
		Domain:              DetectDomain(text),
		HasTechnicalTerms:   containsAny(text, technicalTerms),
		Formality:           mode.Formality(),
	}
}

func countSentences(text string) int {
	n := 0
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

func complexityFor(avg float64) string {
	switch {
	case avg > 15:
		return ComplexityComplex
	case avg > 10:
		return ComplexityMedium
	default:
		return ComplexitySimple
	}
}

// Sentiment classifies the tone of text by keyword counts.
func Sentiment(text string) string {
	var pos, neg, formal int
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if containsAny(w, positiveWords) {
			pos++
		}
		if containsAny(w, negativeWords) {
			neg++
		}
		if containsAny(w, formalWords) {
			formal++
		}
	}

	switch {
	case formal > 2:
		return SentimentFormal
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// DetectDomain returns the first subject area whose keywords occur in text.
func DetectDomain(text string) string {
	lower := strings.ToLower(text)
	for _, d := range domainKeywords {
		if containsAny(lower, d.keywords) {
			return d.name
		}
	}
	return DomainGeneral
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
