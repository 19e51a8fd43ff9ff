package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized texts for error types.
// data provides values substituted into message templates (for example,
// "rowNumber" or "note").
type Translator interface {
	Title(code string) string
	Description(code string) string
	Message(code string, data map[string]string) string
}

type entry struct {
	title       string
	description string
	template    string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) lookup(code string) (entry, bool) {
	if t.lang == "ja" {
		if e, ok := ja[code]; ok {
			base := en[code]
			if e.description == "" {
				e.description = base.description
			}
			if e.template == "" {
				e.template = base.template
			}
			return e, true
		}
	}
	e, ok := en[code]
	return e, ok
}

func (t dictTranslator) Title(code string) string {
	if e, ok := t.lookup(code); ok {
		return e.title
	}
	return code
}

func (t dictTranslator) Description(code string) string {
	if e, ok := t.lookup(code); ok {
		return e.description
	}
	return ""
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	e, ok := t.lookup(code)
	if !ok {
		return data["note"]
	}
	return Render(e.template, data)
}

// Render substitutes {key} placeholders in template with values from data.
// Unknown placeholders render as empty strings.
func Render(template string, data map[string]string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(template, '{')
		if start < 0 {
			b.WriteString(template)
			break
		}
		end := strings.IndexByte(template[start:], '}')
		if end < 0 {
			b.WriteString(template)
			break
		}
		b.WriteString(template[:start])
		b.WriteString(data[template[start+1:start+end]])
		template = template[start+end+1:]
	}
	return b.String()
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

func current() Translator {
	mu.RLock()
	defer mu.RUnlock()
	return currentTranslator
}

// Title fetches the title for the given error type.
func Title(code string) string { return current().Title(code) }

// Description fetches the description for the given error type.
func Description(code string) string { return current().Description(code) }

// T renders the message for the given error type using the current Translator.
func T(code string, data map[string]string) string { return current().Message(code, data) }
