package analyzer

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/stats"
)

// maxRationale bounds Categorization.Rationale in runes.
const maxRationale = 140

// EventText is the textual part of an event that classifiers look at.
type EventText struct {
	App   string `json:"app"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// TextOf extracts the classifiable fields of e.
func TextOf(e activity.Event) EventText {
	return EventText{App: e.App, Title: e.Title, URL: e.URL}
}

// Classifier assigns a category to event text using a taxonomy.
type Classifier interface {
	Classify(text EventText, tax *Taxonomy) Categorization
}

// CategoryKeywords lists the keywords that vote for one category.
type CategoryKeywords struct {
	Name     string   `mapstructure:"name" json:"name"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

type keywordPattern struct {
	word string
	re   *regexp.Regexp
}

// Taxonomy is a compiled, read-only keyword table. It is safe for
// concurrent use.
type Taxonomy struct {
	labels   []string
	keywords map[string][]keywordPattern
	apps     map[string]string
}

// NewTaxonomy compiles whole-word, case-insensitive matchers for every
// keyword. apps maps a lower-cased application name to the category it
// votes for. The uncategorized label is always part of the taxonomy.
func NewTaxonomy(categories []CategoryKeywords, apps map[string]string) (*Taxonomy, error) {
	t := &Taxonomy{
		keywords: make(map[string][]keywordPattern),
		apps:     make(map[string]string),
	}

	seen := make(map[string]bool)
	addLabel := func(name string) {
		if !seen[name] {
			seen[name] = true
			t.labels = append(t.labels, name)
		}
	}

	for i, c := range categories {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			return nil, &activity.InvalidInputError{Index: i, Field: "taxonomy.categories.name", Reason: "empty"}
		}
		addLabel(name)
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("compiling keyword %q: %w", kw, err)
			}
			t.keywords[name] = append(t.keywords[name], keywordPattern{word: kw, re: re})
		}
	}
	addLabel(activity.UncategorizedLabel)

	appNames := make([]string, 0, len(apps))
	for app := range apps {
		appNames = append(appNames, app)
	}
	sort.Strings(appNames)
	for _, app := range appNames {
		category := strings.ToLower(strings.TrimSpace(apps[app]))
		if category == "" {
			continue
		}
		addLabel(category)
		t.apps[strings.ToLower(strings.TrimSpace(app))] = category
	}
	return t, nil
}

// Labels returns the taxonomy's category labels in scoring order.
func (t *Taxonomy) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// DefaultCategoryKeywords returns the built-in keyword table.
func DefaultCategoryKeywords() []CategoryKeywords {
	return []CategoryKeywords{
		{Name: "coding", Keywords: []string{"code", "github", "stackoverflow", "vscode", "intellij", "bug", "develop", "programming", "jira", "gitlab"}},
		{Name: "design", Keywords: []string{"photoshop", "figma", "sketch", "design", "ui", "ux", "illustrator", "blender"}},
		{Name: "research", Keywords: []string{"wiki", "scholar", "research", "article", "paper", "learn", "study", "analyze"}},
		{Name: "social", Keywords: []string{"facebook", "twitter", "linkedin", "instagram", "social", "chat", "meet", "discord"}},
		{Name: "gaming", Keywords: []string{"game", "steam", "epic", "play", "fortnite", "lol"}},
		{Name: "productivity", Keywords: []string{"todo", "task", "notion", "jira", "asana", "excel", "docs", "word", "powerpoint"}},
		{Name: "communication", Keywords: []string{"email", "outlook", "gmail", "slack", "teams", "zoom", "call"}},
		{Name: "education", Keywords: []string{"udemy", "coursera", "edx", "lesson", "course", "school", "university"}},
		{Name: "entertainment", Keywords: []string{"youtube", "netflix", "twitch", "movie", "film", "music", "spotify"}},
		{Name: "news", Keywords: []string{"news", "cnn", "bbc", "aljazeera"}},
		{Name: "shopping", Keywords: []string{"amazon", "ebay", "shop"}},
	}
}

// DefaultAppMappings returns the built-in application table.
func DefaultAppMappings() map[string]string {
	return map[string]string{
		"code.exe":      "coding",
		"photoshop.exe": "design",
		"chrome.exe":    activity.UncategorizedLabel,
		"discord.exe":   "social",
		"steam.exe":     "gaming",
		"outlook.exe":   "communication",
		"excel.exe":     "productivity",
		"slack.exe":     "communication",
		"msedge.exe":    activity.UncategorizedLabel,
		"firefox.exe":   activity.UncategorizedLabel,
		"teams.exe":     "communication",
	}
}

// DefaultTaxonomy compiles the built-in tables.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultCategoryKeywords(), DefaultAppMappings())
	if err != nil {
		panic(err)
	}
	return t
}

// KeywordClassifier scores each category by whole-word keyword hits in the
// title and URL host, adds AppBonus when the application name maps to a
// category, and normalizes the scores with a softmax.
type KeywordClassifier struct {
	AppBonus float64
}

// NewKeywordClassifier returns a classifier with the standard +3 app bonus.
func NewKeywordClassifier() KeywordClassifier {
	return KeywordClassifier{AppBonus: 3}
}

// Classify implements Classifier.
func (c KeywordClassifier) Classify(text EventText, tax *Taxonomy) Categorization {
	if tax == nil || len(tax.labels) == 0 {
		return Categorization{Category: activity.UncategorizedLabel, Rationale: "no taxonomy"}
	}

	searchable := strings.ToLower(text.Title + " " + urlHost(text.URL))
	scores := make([]float64, len(tax.labels))
	hits := make([][]string, len(tax.labels))
	var total float64
	for i, label := range tax.labels {
		for _, kw := range tax.keywords[label] {
			if n := len(kw.re.FindAllStringIndex(searchable, -1)); n > 0 {
				scores[i] += float64(n)
				hits[i] = append(hits[i], kw.word)
			}
		}
		total += scores[i]
	}

	app := strings.ToLower(strings.TrimSpace(text.App))
	appLabel, appMatched := tax.apps[app]
	if appMatched {
		for i, label := range tax.labels {
			if label == appLabel {
				scores[i] += c.AppBonus
				total += c.AppBonus
			}
		}
	}

	if total == 0 {
		return Categorization{
			Category:   activity.UncategorizedLabel,
			Confidence: 0,
			Rationale:  "no keyword or application match",
		}
	}

	probs := softmax(scores)
	best := -1
	var bestProb float64
	for i, p := range probs {
		if p > bestProb {
			best, bestProb = i, p
		}
	}

	category := tax.labels[best]
	rationale := fmt.Sprintf("%s: score %.0f", category, scores[best])
	if len(hits[best]) > 0 {
		rationale += ", keywords " + strings.Join(hits[best], ", ")
	}
	if appMatched && appLabel == category {
		rationale += ", app " + app
	}

	return Categorization{
		Category:   category,
		Confidence: stats.Round(bestProb, 4),
		Rationale:  truncateRunes(rationale, maxRationale),
	}
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}
	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func urlHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// EventCategorization is the categorization of one event in a batch.
type EventCategorization struct {
	Index int    `json:"index"`
	App   string `json:"app"`
	Title string `json:"title"`
	Categorization

	// Source is "community" when a community rule decided the category and
	// "keywords" otherwise.
	Source string `json:"source"`
}

// CategorizeEvents labels every event. A matching community rule wins over
// the classifier; rules may be nil.
func CategorizeEvents(events []activity.Event, rules *RuleSet, c Classifier, tax *Taxonomy) []EventCategorization {
	out := make([]EventCategorization, 0, len(events))
	for i, e := range events {
		text := TextOf(e)
		ec := EventCategorization{Index: i, App: e.App, Title: e.Title}

		if m := rules.Match(text); m.Category != nil {
			ec.Categorization = Categorization{
				Category:   *m.Category,
				Confidence: 1,
				Rationale:  truncateRunes("community rule "+m.MatchedRule.Pattern+" on "+m.Field, maxRationale),
			}
			ec.Source = RuleSourceCommunity
		} else {
			ec.Categorization = c.Classify(text, tax)
			ec.Source = "keywords"
		}
		out = append(out, ec)
	}
	return out
}
