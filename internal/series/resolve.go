package series

import "strings"

// Intent names the semantic role a column plays in a source.
type Intent string

const (
	IntentYear   Intent = "year"
	IntentCode   Intent = "code"
	IntentEntity Intent = "entity"
	IntentValue  Intent = "value"
)

// valueRules maps a value hint to tokens that must all appear in the column name.
// Sources whose value header drifts between releases are matched this way.
var valueRules = map[string][]string{
	"disaster-damage": {"damage", "gdp"},
	"wheat-yield":     {"wheat", "yield"},
}

// Resolve locates the column in header that plays intent for the named source.
// Matching is case-insensitive and header order breaks ties. Priority:
//
//	year:   equal to hint, then equal to "year"
//	code:   equal to hint, "code", containing "country"+"code", containing "code"
//	entity: equal to hint, "entity", containing "country name", equal to "country"
//	value:  all tokens of a named rule (see valueRules); else equal to hint, then containing hint
//
// When nothing matches a *SchemaMismatchError listing the header is returned.
func Resolve(source string, header []string, intent Intent, hint string) (string, error) {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}
	h := strings.ToLower(strings.TrimSpace(hint))

	var steps []func(string) bool
	switch intent {
	case IntentYear:
		steps = append(steps, equals(h), equals("year"))
	case IntentCode:
		steps = append(steps, equals(h), equals("code"), containsAll("country", "code"), containsAll("code"))
	case IntentEntity:
		steps = append(steps, equals(h), equals("entity"), containsAll("country name"), equals("country"))
	case IntentValue:
		if tokens, ok := valueRules[h]; ok {
			steps = append(steps, containsAll(tokens...))
		} else {
			steps = append(steps, equals(h), containsAll(h))
		}
	}
	for _, match := range steps {
		for i, col := range lower {
			if col != "" && match(col) {
				return header[i], nil
			}
		}
	}
	cols := make([]string, len(header))
	copy(cols, header)
	return "", &SchemaMismatchError{Source: source, Intent: intent, Hint: hint, Columns: cols}
}

func equals(want string) func(string) bool {
	return func(col string) bool { return want != "" && col == want }
}

func containsAll(tokens ...string) func(string) bool {
	return func(col string) bool {
		for _, t := range tokens {
			if t == "" || !strings.Contains(col, t) {
				return false
			}
		}
		return true
	}
}
