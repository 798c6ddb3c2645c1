package vcenter

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/vmware/govmomi/vim25/types"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// KeyName matches search terms against object names.
	KeyName = "name"
	// KeyRef matches search terms against managed object references.
	KeyRef = "ref"
)

// Search selects managed objects by name or reference.
type Search struct {
	// Terms are matched against the selected key. An object is selected when
	// any term matches it. No term selects every object.
	//
	// A term wrapped in slashes is a regular expression, a term containing
	// *, ? or [ is a shell pattern and anything else is an exact match. All
	// comparisons ignore case.
	Terms []string

	// Key is the attribute terms are matched against, KeyName by default.
	Key string

	// Normalize strips diacritics from both terms and values before matching,
	// so that "electre" finds "Électre".
	Normalize bool
}

// Matches reports whether the object carrying the given name and reference
// is selected.
type Matches func(name string, ref types.ManagedObjectReference) bool

// Compile validates the search and returns its matching function.
func (s Search) Compile() (Matches, error) {
	key := s.Key
	if key == "" {
		key = KeyName
	}
	if key != KeyName && key != KeyRef {
		return nil, fmt.Errorf("unsupported search key %q (accepted: %s, %s)", s.Key, KeyName, KeyRef)
	}

	fold := func(v string) string { return v }
	if s.Normalize {
		fold = removeDiacritics
	}

	terms := make([]func(string) bool, 0, len(s.Terms))
	for _, term := range s.Terms {
		match, err := compileTerm(fold(term))
		if err != nil {
			return nil, fmt.Errorf("invalid search term %q: %w", term, err)
		}
		terms = append(terms, match)
	}

	return func(name string, ref types.ManagedObjectReference) bool {
		if len(terms) == 0 {
			return true
		}
		value := name
		if key == KeyRef {
			value = ref.Value
		}
		value = fold(value)
		for _, match := range terms {
			if match(value) {
				return true
			}
		}
		return false
	}, nil
}

func compileTerm(term string) (func(string) bool, error) {
	if len(term) >= 2 && strings.HasPrefix(term, "/") && strings.HasSuffix(term, "/") {
		re, err := regexp.Compile("(?i)" + term[1:len(term)-1])
		if err != nil {
			return nil, err
		}
		return re.MatchString, nil
	}

	if strings.ContainsAny(term, "*?[") {
		pattern := strings.ToLower(term)
		return func(value string) bool {
			ok, err := path.Match(pattern, strings.ToLower(value))
			return err == nil && ok
		}, nil
	}

	return func(value string) bool {
		return strings.EqualFold(value, term)
	}, nil
}

func removeDiacritics(s string) string {
	// Transformers carry state across calls, build a fresh chain every time.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
