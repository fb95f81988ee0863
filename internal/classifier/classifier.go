// Package classifier maps feed text to a country and relevance flags using
// case-insensitive substring matching over configured vocabularies.
//
// Country detection is order-sensitive: countries are tried in the order they
// are configured and the first one with any keyword hit wins. Overlapping
// keyword lists therefore resolve to the earlier country.
package classifier

import (
	"fmt"
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"TenderMonitor/internal/domain"
)

// Policy selects how strict the candidate predicate is.
type Policy string

const (
	// PolicyAny accepts text matching any one of the tender, anchor or service vocabularies.
	PolicyAny Policy = "any"
	// PolicyTender requires a tender/construction keyword.
	PolicyTender Policy = "tender"
	// PolicyTenderService requires a tender keyword and a trade/service keyword.
	PolicyTenderService Policy = "tender-service"
	// PolicyAll requires tender, anchor and service keywords together.
	PolicyAll Policy = "all"
)

// ParsePolicy validates a policy name; empty input selects PolicyAll.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case "":
		return PolicyAll, nil
	case PolicyAny, PolicyTender, PolicyTenderService, PolicyAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown classifier policy %q", value)
	}
}

// Country pairs a country name with the keywords that identify it.
type Country struct {
	Name     string
	Keywords []string
}

// Vocabulary is the full keyword configuration of a classifier.
type Vocabulary struct {
	Policy        Policy
	Countries     []Country
	Anchors       []string
	Tender        []string
	Service       []string
	Organizations []string
}

// Classifier is safe for concurrent use once built.
type Classifier struct {
	policy    Policy
	countries []countryMatcher
	anchors   matcher
	tender    matcher
	service   matcher
	orgs      matcher
}

type countryMatcher struct {
	name string
	matcher
}

// New compiles the vocabulary into matchers.
func New(v Vocabulary) (*Classifier, error) {
	policy, err := ParsePolicy(string(v.Policy))
	if err != nil {
		return nil, err
	}
	if len(v.Countries) == 0 {
		return nil, fmt.Errorf("classifier: no countries configured")
	}

	c := &Classifier{
		policy:  policy,
		anchors: newMatcher(v.Anchors),
		tender:  newMatcher(v.Tender),
		service: newMatcher(v.Service),
		orgs:    newMatcher(v.Organizations),
	}

	for _, country := range v.Countries {
		name := strings.TrimSpace(country.Name)
		if name == "" {
			return nil, fmt.Errorf("classifier: country without name")
		}
		c.countries = append(c.countries, countryMatcher{name: name, matcher: newMatcher(country.Keywords)})
	}

	return c, nil
}

// Policy returns the active candidate policy.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Classify evaluates title+summary text.
func (c *Classifier) Classify(text string) domain.Classification {
	haystack := []byte(Normalize(text))

	result := domain.Classification{Country: c.detectCountry(haystack)}
	result.Candidate = c.isCandidate(haystack)
	result.HighPotential = result.Candidate && (c.orgs.empty() || c.orgs.matches(haystack))
	return result
}

func (c *Classifier) detectCountry(haystack []byte) string {
	for _, country := range c.countries {
		if country.matches(haystack) {
			return country.name
		}
	}
	return ""
}

func (c *Classifier) isCandidate(haystack []byte) bool {
	switch c.policy {
	case PolicyAny:
		configured := false
		for _, m := range []matcher{c.tender, c.anchors, c.service} {
			if m.empty() {
				continue
			}
			configured = true
			if m.matches(haystack) {
				return true
			}
		}
		return !configured
	case PolicyTender:
		return c.tender.satisfiedBy(haystack)
	case PolicyTenderService:
		return c.tender.satisfiedBy(haystack) && c.service.satisfiedBy(haystack)
	default:
		return c.tender.satisfiedBy(haystack) &&
			c.anchors.satisfiedBy(haystack) &&
			c.service.satisfiedBy(haystack)
	}
}

type matcher struct {
	automaton *ahocorasick.Matcher
}

func newMatcher(keywords []string) matcher {
	normalized := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = Normalize(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		normalized = append(normalized, kw)
	}
	if len(normalized) == 0 {
		return matcher{}
	}
	return matcher{automaton: ahocorasick.NewStringMatcher(normalized)}
}

func (m matcher) empty() bool {
	return m.automaton == nil
}

func (m matcher) matches(haystack []byte) bool {
	if m.automaton == nil {
		return false
	}
	return len(m.automaton.MatchThreadSafe(haystack)) > 0
}

// satisfiedBy treats an unconfigured vocabulary as a passing condition.
func (m matcher) satisfiedBy(haystack []byte) bool {
	return m.empty() || m.matches(haystack)
}

// letters that NFD does not decompose into a base letter plus a mark.
var foldReplacer = strings.NewReplacer(
	"ł", "l",
	"ø", "o",
	"æ", "ae",
	"ß", "ss",
	"đ", "d",
)

// Normalize lowercases s and folds diacritics so that "Wrocław" and "wroclaw" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return foldReplacer.Replace(folded)
}
