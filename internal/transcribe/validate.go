// ABOUTME: Accepted whisper model and language identifiers
package transcribe

var validModels = map[string]bool{
	"tiny":           true,
	"base":           true,
	"small":          true,
	"medium":         true,
	"large-v3-turbo": true,
}

var validLanguages = map[string]bool{
	"auto":  true,
	"en":    true,
	"fr":    true,
	"fr-CA": true,
	"es":    true,
	"de":    true,
	"it":    true,
	"pt":    true,
	"ru":    true,
	"ja":    true,
	"ko":    true,
	"zh":    true,
}

// ValidModel reports whether name is a recognized whisper model.
func ValidModel(name string) bool {
	return validModels[name]
}

// ValidLanguage reports whether code is a supported language selector.
func ValidLanguage(code string) bool {
	return validLanguages[code]
}
