// Package langdetect identifies the language of transcript text so captions
// can switch layout modes without user input.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector classifies text into one of the supported caption languages.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds a detector restricted to the languages the display
// supports. The relative-distance threshold avoids flapping on short or
// ambiguous fragments.
func NewDetector() *Detector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Spanish,
		lingua.French,
		lingua.German,
		lingua.Chinese,
		lingua.Japanese,
		lingua.Korean,
	}

	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithMinimumRelativeDistance(0.25).
			Build(),
	}
}

// Detect returns the lowercase ISO 639-1 code of the detected language, or
// an empty string when detection is inconclusive.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
