// Package intent turns free-form command text into normalized tokens
// and recognized event tags.
package intent

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Tag labels a recognized intent within a command's vocabulary.
type Tag string

// Table maps each tag to the keywords that trigger it. Matching is
// case-insensitive, exact per token.
type Table map[Tag][]string

// TagSet holds the tags recognized in a single message.
type TagSet map[Tag]bool

// Has reports whether tag fired.
func (s TagSet) Has(tag Tag) bool { return s[tag] }

var (
	tokenStripRE = regexp.MustCompile(`[^a-z0-9'_+-]+`)
	mentionRE    = regexp.MustCompile(`<@([UW][A-Z0-9]+)(?:\|[^>]*)?>`)
)

// Tokenize splits text into normalized word tokens: lower-cased and
// stripped of any rune outside letters, digits, apostrophe, underscore,
// hyphen and plus. Tokens stripped down to nothing are dropped.
func Tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		tok := tokenStripRE.ReplaceAllString(field, "")
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Mentions returns the user IDs referenced by <@U...> or <@W...>
// mention markers, in order of first appearance, duplicates collapsed.
// W-prefixed IDs are what enterprise-grid workspaces assign.
func Mentions(text string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, m := range mentionRE.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
	}
	return ids
}

// Amounts returns the tokens that parse as finite numbers, in order.
// Anything non-numeric is skipped rather than reported as an error;
// "nan" and "inf" parse but are no use as amounts, so they are skipped
// too.
func Amounts(tokens []string) []float64 {
	var amounts []float64
	for _, tok := range tokens {
		n, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		amounts = append(amounts, n)
	}
	return amounts
}

// Classify matches tokens against a keyword table and returns every tag
// whose keyword set intersects the token set. Token order and
// duplicates are irrelevant; unmatched tokens simply contribute
// nothing. Handlers decide how co-occurring tags combine.
func Classify(tokens []string, table Table) TagSet {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}

	tags := make(TagSet)
	for tag, words := range table {
		for _, w := range words {
			if set[w] {
				tags[tag] = true
				break
			}
		}
	}
	return tags
}
