package importer

import "strings"

// Mapping maps a canonical column key to the raw spreadsheet header chosen
// for it. Keys with no match are absent, never mapped to an empty placeholder.
// Built fresh per import session and discarded after submission.
type Mapping map[string]string

// AutoMap resolves raw spreadsheet headers onto the canonical schema.
// Applied once per header-extraction event.
//
// For each canonical column an exact match is tried first: case-insensitive,
// whitespace-trimmed equality between the canonical key and a raw header.
// The first matching header wins.
//
// Exactly two keys get a fuzzy fallback: the SKU identifier (headers
// containing "id" or "code") and the SKU name (headers containing "name" or
// "title"). Those columns are near-universally present under varying labels;
// the domain-specific score and flag columns are not safely guessable, so
// everything else stays unmapped until the operator maps it manually. Keep
// this narrow: generalizing the fuzzy rule silently mis-maps score columns.
func AutoMap(rawHeaders []string, schema []Column) Mapping {
	mapping := make(Mapping)

	for _, col := range schema {
		if header, ok := exactMatch(rawHeaders, col.Key); ok {
			mapping[col.Key] = header
			continue
		}

		switch col.Key {
		case ColSkuID:
			if header, ok := containsMatch(rawHeaders, "id", "code"); ok {
				mapping[col.Key] = header
			}
		case ColSkuName:
			if header, ok := containsMatch(rawHeaders, "name", "title"); ok {
				mapping[col.Key] = header
			}
		}
	}

	return mapping
}

// Validate returns the display labels of required columns missing from the
// mapping, in schema order. The ordering is reproduced verbatim in
// user-facing messages, so it must be deterministic.
func Validate(mapping Mapping, schema []Column) []string {
	var missing []string
	for _, col := range schema {
		if !col.Required {
			continue
		}
		if mapping[col.Key] == "" {
			missing = append(missing, col.Label)
		}
	}
	return missing
}

func exactMatch(headers []string, key string) (string, bool) {
	want := strings.ToLower(key)
	for _, h := range headers {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return h, true
		}
	}
	return "", false
}

func containsMatch(headers []string, substrings ...string) (string, bool) {
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, sub := range substrings {
			if strings.Contains(lower, sub) {
				return h, true
			}
		}
	}
	return "", false
}
