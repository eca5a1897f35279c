// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent decomposes free-text research questions into structured
// search intent. Extraction is an ordered list of typed rules; rule order
// is the contract, first match wins per field, and the result is always a
// fully populated ParsedIntent. Implements: prd008-query-understanding (R1, R2).
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-finder/pkg/types"
)

// Extractor turns raw query text into a ParsedIntent. The zero value is
// not usable; construct with New.
type Extractor struct {
	defaultCount int
	now          func() time.Time
}

// New returns an Extractor. defaultCount <= 0 uses types.DefaultResultCount.
func New(defaultCount int) *Extractor {
	if defaultCount <= 0 {
		defaultCount = types.DefaultResultCount
	}
	return &Extractor{defaultCount: defaultCount, now: time.Now}
}

// WithClock overrides the time source used to resolve relative expressions
// ("last 5 years"). Tests use a fixed clock.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// extraction carries the working state one rule at a time.
type extraction struct {
	lowered string
	now     time.Time
	intent  *types.ParsedIntent
}

// rule is one typed extraction step. Rules run in declaration order and
// must not overwrite fields an earlier rule already set.
type rule struct {
	name  string
	apply func(*extraction)
}

// rules is the ordered extraction contract. Citation focus runs before
// topic extraction because its phrasing changes how the remaining text is
// read as a topic.
var rules = []rule{
	{"citation-focus", applyCitationFocus},
	{"temporal", applyTemporal},
	{"topic", applyTopic},
	{"result-count", applyResultCount},
	{"analysis-request", applyAnalysisRequest},
	{"specific-title", applySpecificTitle},
}

// Extract decomposes text into a ParsedIntent. It is total: no input
// produces an error, and unmatched fields take their defaults.
func (e *Extractor) Extract(text string) types.ParsedIntent {
	intent := types.ParsedIntent{ResultCount: e.defaultCount}

	ex := &extraction{
		lowered: strings.ToLower(strings.TrimSpace(text)),
		now:     e.now(),
		intent:  &intent,
	}
	for _, r := range rules {
		r.apply(ex)
	}

	if intent.ResultCount <= 0 {
		intent.ResultCount = e.defaultCount
	}
	if intent.ResultCount > types.MaxResultCount {
		intent.ResultCount = types.MaxResultCount
	}
	return intent
}

// --- citation focus ---

var citationCues = []*regexp.Regexp{
	regexp.MustCompile(`\bmost cited\b`),
	regexp.MustCompile(`\btop cited\b`),
	regexp.MustCompile(`\bhighly cited\b`),
	regexp.MustCompile(`\bhighest cited\b`),
	regexp.MustCompile(`\bcitations?\b`),
	regexp.MustCompile(`\bcited papers\b`),
	regexp.MustCompile(`\binfluential\b`),
	regexp.MustCompile(`\b(?:highest |high )?impact\b`),
	regexp.MustCompile(`\bh-?index\b`),
	regexp.MustCompile(`\bcitation count\b`),
}

func applyCitationFocus(ex *extraction) {
	for _, re := range citationCues {
		if re.MatchString(ex.lowered) {
			ex.intent.CitationPriority = true
			return
		}
	}
}

// --- temporal ---

var (
	lastNYearsRe = regexp.MustCompile(`\b(?:last|past)\s+(\d{1,2})\s+years?\b`)
	lastYearRe   = regexp.MustCompile(`\b(?:last|past)\s+year\b`)
	recentRe     = regexp.MustCompile(`\brecent years\b`)
	yearRangeRe  = regexp.MustCompile(`\b(?:from\s+|between\s+)?(\d{4})\s+(?:to|and|-|through)\s+(\d{4})\b`)
	sinceYearRe  = regexp.MustCompile(`\b(?:after|since|from)\s+(\d{4})\b`)
	inYearRe     = regexp.MustCompile(`\bpublished\s+in\s+(\d{4})\b`)
	decadeRe     = regexp.MustCompile(`\b(\d{3}0)s\b`)
	bareYearRe   = regexp.MustCompile(`\b(\d{4})\b`)
)

func applyTemporal(ex *extraction) {
	now := ex.now

	// Relative expressions resolve against the clock at call time.
	if m := lastNYearsRe.FindStringSubmatch(ex.lowered); m != nil {
		n, _ := strconv.Atoi(m[1])
		ex.intent.Years = &types.YearFilter{From: now.Year() - n}
		return
	}
	if lastYearRe.MatchString(ex.lowered) {
		ex.intent.Years = &types.YearFilter{From: now.Year() - 1}
		return
	}
	if recentRe.MatchString(ex.lowered) {
		ex.intent.Years = &types.YearFilter{From: now.Year() - 5}
		return
	}

	if m := yearRangeRe.FindStringSubmatch(ex.lowered); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		if plausibleYear(from, now) && plausibleYear(to, now) && from <= to {
			ex.intent.Years = &types.YearFilter{From: from, To: to}
			return
		}
	}
	if m := sinceYearRe.FindStringSubmatch(ex.lowered); m != nil {
		if y, _ := strconv.Atoi(m[1]); plausibleYear(y, now) {
			ex.intent.Years = &types.YearFilter{From: y}
			return
		}
	}
	if m := inYearRe.FindStringSubmatch(ex.lowered); m != nil {
		if y, _ := strconv.Atoi(m[1]); plausibleYear(y, now) {
			ex.intent.Years = &types.YearFilter{From: y, To: y}
			return
		}
	}
	if m := decadeRe.FindStringSubmatch(ex.lowered); m != nil {
		if y, _ := strconv.Atoi(m[1]); plausibleYear(y, now) {
			ex.intent.Years = &types.YearFilter{From: y, To: y + 9}
			return
		}
	}
	if m := bareYearRe.FindStringSubmatch(ex.lowered); m != nil {
		if y, _ := strconv.Atoi(m[1]); plausibleYear(y, now) {
			ex.intent.Years = &types.YearFilter{From: y}
		}
	}
}

// plausibleYear bounds extracted years to the academic publishing range;
// a number like 3000 in the text is not a year filter.
func plausibleYear(y int, now time.Time) bool {
	return y >= 1900 && y <= now.Year()+5
}

// --- topic ---

// topicPatterns capture a narrow topic span, most specific first. Each
// pattern's first capture group is the candidate topic.
var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:most|top|highly|highest) cited\s+([\w\- ]+?)\s+(?:papers|articles|research)`),
	regexp.MustCompile(`\binfluential\s+([\w\- ]+?)\s+(?:papers|studies|research)`),
	regexp.MustCompile(`\b(?:papers|articles|research|studies)\s+(?:on|about|in)\s+([\w\-' ]+?)(?:\s+published|\s+from|\s+since|\s+after|\s+between|\s+with|\s+and\b|$)`),
	regexp.MustCompile(`\b(?:find|get|show|list)\s+(?:papers|research|articles)\s+(?:on|about)\s+([\w\-' ]+?)(?:\s+published|\s+since|\s+after|$)`),
	regexp.MustCompile(`^([\w\- ]+?)\s+(?:papers|articles|research)\s+(?:published\s+)?(?:after|since|from|between|in)\b`),
	regexp.MustCompile(`\babout\s+([\w\-' ]+?)(?:\s+published|\s+from|\s+since|\s+after|\s+with|$)`),
	regexp.MustCompile(`^([\w\- ]+?)\s+(?:papers|articles)$`),
}

// canonicalTopics normalizes known research areas, including the
// misspellings the original corpus of queries actually contained.
var canonicalTopics = []struct {
	canonical string
	aliases   []string
}{
	{"machine learning", []string{"machine learning", "machine-learning", "machien learning", "machin learning"}},
	{"artificial intelligence", []string{"artificial intelligence", "artifical intelligence", "artficial intelligence"}},
	{"neural networks", []string{"neural network", "neural networks", "neaural network"}},
	{"deep learning", []string{"deep learning", "deep-learning", "deep learnign"}},
	{"computer vision", []string{"computer vision", "computor vision"}},
	{"natural language processing", []string{"natural language processing", "nlp", "natrual language processing"}},
	{"quantum computing", []string{"quantum computing", "quantam computing", "quantum computng"}},
	{"robotics", []string{"robotics"}},
	{"cybersecurity", []string{"cybersecurity", "cyber security"}},
	{"blockchain", []string{"blockchain", "block chain"}},
}

// topicStopwords are filler words excluded from the full-text fallback.
var topicStopwords = map[string]bool{
	"find": true, "show": true, "give": true, "about": true, "papers": true,
	"paper": true, "articles": true, "article": true, "research": true,
	"published": true, "most": true, "cited": true, "with": true, "more": true,
	"than": true, "least": true, "top": true, "since": true, "from": true,
	"after": true, "summary": true, "summarize": true, "analysis": true,
	"their": true, "recent": true, "years": true, "year": true, "best": true,
	"influential": true, "impact": true, "citations": true, "citation": true,
	"results": true, "last": true, "past": true, "please": true, "list": true,
}

func applyTopic(ex *extraction) {
	for _, re := range topicPatterns {
		if m := re.FindStringSubmatch(ex.lowered); m != nil {
			if t := normalizeTopic(m[1]); t != "" {
				ex.intent.Topic = t
				return
			}
		}
	}

	// Known-vocabulary match catches queries the span patterns miss.
	for _, ct := range canonicalTopics {
		for _, alias := range ct.aliases {
			if strings.Contains(ex.lowered, alias) {
				ex.intent.Topic = ct.canonical
				return
			}
		}
	}

	// Fallback: the normalized remaining text, once markers and filler
	// are stripped. Nothing salient left means no topic at all, which is
	// what arms the generative fallback downstream.
	words := strings.FieldsFunc(ex.lowered, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	var salient []string
	for _, w := range words {
		if len(w) > 3 && !topicStopwords[w] && !bareYearRe.MatchString(w) {
			salient = append(salient, w)
		}
		if len(salient) == 3 {
			break
		}
	}
	ex.intent.Topic = strings.Join(salient, " ")
}

// normalizeTopic trims a captured span. Spans shorter than three
// characters are discarded; canonical mapping is reserved for the
// vocabulary fallback so a user's own phrasing survives span capture.
func normalizeTopic(span string) string {
	span = strings.TrimSpace(span)
	if len(span) < 3 {
		return ""
	}
	return span
}

// --- result count ---

var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:find|get|retrieve|show|give me|list)\s+(?:the\s+)?(?:top\s+)?(\d{1,3})\b`),
	regexp.MustCompile(`\btop\s+(\d{1,3})\b`),
	regexp.MustCompile(`\bfirst\s+(\d{1,3})\b`),
	regexp.MustCompile(`\bexactly\s+(\d{1,3})\b`),
	regexp.MustCompile(`\b(\d{1,3})\s+(?:most\s+)?(?:cited|relevant|recent)?\s*(?:papers|articles|results)\b`),
}

func applyResultCount(ex *extraction) {
	for _, re := range countPatterns {
		if m := re.FindStringSubmatch(ex.lowered); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				continue
			}
			if n > types.MaxResultCount {
				n = types.MaxResultCount
			}
			ex.intent.ResultCount = n
			return
		}
	}
}

// --- analysis request ---

var analysisCues = []*regexp.Regexp{
	regexp.MustCompile(`\bsummar(?:y|ize|ise|ies)\b`),
	regexp.MustCompile(`\banaly(?:ze|se|sis)\b`),
	regexp.MustCompile(`\bexplain\b`),
	regexp.MustCompile(`\bcompare\b`),
	regexp.MustCompile(`\breview\b`),
	regexp.MustCompile(`\binsights?\b`),
	regexp.MustCompile(`\btrends?\b`),
	regexp.MustCompile(`\bkey findings\b`),
	regexp.MustCompile(`\boverview\b`),
}

func applyAnalysisRequest(ex *extraction) {
	for _, re := range analysisCues {
		if re.MatchString(ex.lowered) {
			ex.intent.WantsAnalysis = true
			return
		}
	}
}

// --- specific title ---

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`how many citations (?:does|for) (?:the )?(?:paper|article)?\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`citations? (?:count )?(?:of|for) (?:the )?(?:paper|article)?\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?:paper|article) titled?\s*['"]([^'"]+)['"]`),
}

// applySpecificTitle only fires on citation-focused queries: a quoted span
// in an ordinary topic query is just emphasis, not a lookup request.
func applySpecificTitle(ex *extraction) {
	if !ex.intent.CitationPriority {
		return
	}
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(ex.lowered); m != nil {
			title := strings.TrimSpace(m[1])
			if len(title) > 5 {
				ex.intent.SpecificTitle = title
				return
			}
		}
	}
}
