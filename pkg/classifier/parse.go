package classifier

import (
	"strings"

	"github.com/seolens/seolens-engine/pkg/models"
)

// ParseResponse extracts keyword classifications from a model response.
// The expected shape is one "- <keyword>: <intent>" line per keyword, but
// nothing else about the response is guaranteed. Lines without the
// separator, with an empty keyword, or with an out-of-vocabulary label
// are dropped, never coerced; dropped is the count of non-empty lines
// that did not yield a classification.
func ParseResponse(raw string) (intents map[string]models.Intent, dropped int) {
	intents = make(map[string]models.Intent)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		keyword, label, found := strings.Cut(line, ":")
		if !found {
			dropped++
			continue
		}

		keyword = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(keyword), "-"))
		intent := models.ParseIntent(label)
		if keyword == "" || !intent.Known() {
			dropped++
			continue
		}

		intents[models.FoldKey(keyword)] = intent
	}
	return intents, dropped
}
