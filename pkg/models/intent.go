package models

import (
	"strings"
	"time"
)

// Intent classifies the searcher's purpose behind a keyword.
type Intent string

const (
	IntentInformational Intent = "Informational"
	IntentCommercial    Intent = "Commercial"
	IntentNavigational  Intent = "Navigational"
	IntentTransactional Intent = "Transactional"
	// IntentUnknown marks the absence of a classification. It is never
	// written to the store.
	IntentUnknown Intent = "Unknown"
)

// intentAliases maps lowercased label variants to canonical intents.
// The Indonesian forms come from the Search Console exports this tool
// originally processed.
var intentAliases = map[string]Intent{
	"informational": IntentInformational,
	"informasional": IntentInformational,
	"commercial":    IntentCommercial,
	"komersial":     IntentCommercial,
	"navigational":  IntentNavigational,
	"navigasional":  IntentNavigational,
	"transactional": IntentTransactional,
	"transaksional": IntentTransactional,
}

// ParseIntent normalizes a raw label into one of the four canonical
// intents. Unrecognized labels map to IntentUnknown; the classifier never
// coerces an out-of-vocabulary answer into a fifth category.
func ParseIntent(raw string) Intent {
	if intent, ok := intentAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return intent
	}
	return IntentUnknown
}

// Known reports whether the intent is one of the four persistable labels.
func (i Intent) Known() bool {
	return i != IntentUnknown && i != ""
}

// IntentRecord is a persisted keyword classification.
// Stored in seo_keyword_intents, keyed by the case-folded keyword.
type IntentRecord struct {
	Keyword   string    `json:"keyword"`
	Intent    Intent    `json:"intent"`
	UpdatedAt time.Time `json:"updated_at"`
}
