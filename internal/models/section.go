package models

import "strings"

// SectionMarketplace is the only section with query meaning. Every other
// value is a forum sub-section and is stored as given.
const SectionMarketplace = "marketplace"

func IsMarketplace(section string) bool {
	return section == SectionMarketplace
}

// PriceBracket is a marketplace price filter.
type PriceBracket int

const (
	BracketUpTo1000 PriceBracket = iota + 1
	Bracket1000To5000
	Bracket5000Plus
)

// ParsePriceBracket maps the query value to a bracket. ok is false for
// empty or unrecognised values, which callers treat as "no filter".
func ParsePriceBracket(s string) (b PriceBracket, ok bool) {
	switch strings.TrimSpace(s) {
	case "0-1000":
		return BracketUpTo1000, true
	case "1000-5000":
		return Bracket1000To5000, true
	case "5000+":
		return Bracket5000Plus, true
	}
	return 0, false
}

func (b PriceBracket) String() string {
	switch b {
	case BracketUpTo1000:
		return "0-1000"
	case Bracket1000To5000:
		return "1000-5000"
	case Bracket5000Plus:
		return "5000+"
	}
	return ""
}

// Contains reports whether price falls inside the bracket. Bounds are inclusive,
// so 1000 and 5000 each belong to two brackets.
func (b PriceBracket) Contains(price float64) bool {
	switch b {
	case BracketUpTo1000:
		return price <= 1000
	case Bracket1000To5000:
		return price >= 1000 && price <= 5000
	case Bracket5000Plus:
		return price >= 5000
	}
	return false
}

// PriceBrackets lists the brackets in display order.
func PriceBrackets() []PriceBracket {
	return []PriceBracket{BracketUpTo1000, Bracket1000To5000, Bracket5000Plus}
}

// ForumSections are the sections offered in the post form. Posts may still
// carry any other value.
var ForumSections = []string{"discussion", "guides", "news", "help"}
