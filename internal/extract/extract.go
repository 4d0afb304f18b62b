package extract

import (
	"regexp"
	"strings"
)

var punctuation = regexp.MustCompile(`[^\w\s]`)

// Result holds whichever of country and category was recognized in a query.
// Both fields empty means the query named neither and cannot be routed.
type Result struct {
	CountryName string // lowercase name as matched, e.g. "united states"
	CountryCode string // provider code, e.g. "us"
	Category    string
}

// Empty reports whether neither a country nor a category was found.
func (r Result) Empty() bool {
	return r.CountryCode == "" && r.Category == ""
}

// Normalize lowercases the query and strips punctuation so that substring
// matching sees a uniform shape.
func Normalize(query string) string {
	return punctuation.ReplaceAllString(strings.ToLower(query), "")
}

// Extract scans the query for the first known country name and, separately,
// the first known category keyword. Plain substring matching, no word
// boundaries: "indiana" matches "india". First match in list order wins.
func Extract(query string) Result {
	q := Normalize(query)

	var res Result
	for _, c := range Countries {
		if strings.Contains(q, c.Name) {
			res.CountryName = c.Name
			res.CountryCode = c.Code
			break
		}
	}

	for _, cat := range Categories {
		if strings.Contains(q, cat) {
			res.Category = cat
			break
		}
	}

	return res
}
