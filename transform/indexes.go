package transform

import "strings"

// ART-DECOR CSV exports label their designation columns with a language tag
// and a designation kind, e.g. "Designation de-CH preferred". The exact
// label layout varies between exports, so columns are matched by substring.

// designationIndices tracks the column positions of the ten language/kind
// combinations in a CSV designation header row. -1 means the combination is
// absent, which skips that slot rather than failing.
type designationIndices struct {
	dePreferred int
	enPreferred int
	frPreferred int
	itPreferred int
	rmPreferred int
	deSynonym   int
	enSynonym   int
	frSynonym   int
	itSynonym   int
	rmSynonym   int
}

// resolveDesignationIndices scans a header row for each language/kind pair.
func resolveDesignationIndices(headers []string) designationIndices {
	return designationIndices{
		dePreferred: findDesignationColumn(headers, "de-CH", "preferred"),
		enPreferred: findDesignationColumn(headers, "en-US", "preferred"),
		frPreferred: findDesignationColumn(headers, "fr-CH", "preferred"),
		itPreferred: findDesignationColumn(headers, "it-CH", "preferred"),
		rmPreferred: findDesignationColumn(headers, "rm-CH", "preferred"),
		deSynonym:   findDesignationColumn(headers, "de-CH", "synonym"),
		enSynonym:   findDesignationColumn(headers, "en-US", "synonym"),
		frSynonym:   findDesignationColumn(headers, "fr-CH", "synonym"),
		itSynonym:   findDesignationColumn(headers, "it-CH", "synonym"),
		rmSynonym:   findDesignationColumn(headers, "rm-CH", "synonym"),
	}
}

// findDesignationColumn returns the first column whose header contains both
// the language tag and the designation kind, or -1 when none matches.
func findDesignationColumn(headers []string, language, kind string) int {
	for i, h := range headers {
		if strings.Contains(h, language) && strings.Contains(h, kind) {
			return i
		}
	}
	return -1
}

// maxIndex returns the highest resolved column index, or -1 when no
// designation column was found at all.
func (di designationIndices) maxIndex() int {
	max := -1
	indices := []int{
		di.dePreferred, di.enPreferred, di.frPreferred, di.itPreferred, di.rmPreferred,
		di.deSynonym, di.enSynonym, di.frSynonym, di.itSynonym, di.rmSynonym,
	}
	for _, idx := range indices {
		if idx > max {
			max = idx
		}
	}
	return max
}
