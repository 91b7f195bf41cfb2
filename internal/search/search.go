// Package search turns a raw question search string into a filter and a
// ranking over questions.
//
// Recognised forms, checked in order on the trimmed input:
//
//	""                 every active question, highest vote count first
//	[tag]              questions carrying a tag whose name contains tag
//	@user              questions whose author's username contains user
//	collective:"name"  questions whose body contains name
//	anything else      keyword match over title, body, description and tag names
//
// Matching is case-insensitive. A pattern with an empty payload, such as "[]"
// or "@", is treated as a keyword search over the raw input.
package search

import (
	"strings"
)

type Kind int

const (
	KindAll Kind = iota
	KindTag
	KindAuthor
	KindCollective
	KindKeyword
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindTag:
		return "tag"
	case KindAuthor:
		return "author"
	case KindCollective:
		return "collective"
	case KindKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

const collectivePrefix = `collective:"`

// Query is a classified search string. Term is lower-cased.
type Query struct {
	Kind Kind
	Term string
}

// Parse classifies raw.
func Parse(raw string) Query {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Query{Kind: KindAll}
	}
	lower := strings.ToLower(s)

	switch {
	case len(lower) >= 2 && lower[0] == '[' && lower[len(lower)-1] == ']':
		if term := strings.TrimSpace(lower[1 : len(lower)-1]); term != "" {
			return Query{Kind: KindTag, Term: term}
		}
	case lower[0] == '@':
		if term := strings.TrimSpace(lower[1:]); term != "" {
			return Query{Kind: KindAuthor, Term: term}
		}
	case strings.HasPrefix(lower, collectivePrefix) &&
		len(lower) > len(collectivePrefix) && strings.HasSuffix(lower, `"`):
		if term := strings.TrimSpace(lower[len(collectivePrefix) : len(lower)-1]); term != "" {
			return Query{Kind: KindCollective, Term: term}
		}
	}

	return Query{Kind: KindKeyword, Term: lower}
}
