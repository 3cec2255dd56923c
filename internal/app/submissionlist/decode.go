package submissionlist

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

// Decoder turns an encoded template source into template text.
type Decoder interface {
	Decode(encoded string) (string, error)
}

// JSONDecoder decodes sources encoded as a JSON string literal, the form in which pages
// embed templates inline.
type JSONDecoder struct{}

func (JSONDecoder) Decode(encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", fmt.Errorf("empty template source")
	}
	var out string
	if err := json.Unmarshal([]byte(encoded), &out); err != nil {
		return "", fmt.Errorf("decode template: %w", err)
	}
	return out, nil
}

// EncodeTemplate encodes template text so that JSONDecoder can read it back.
func EncodeTemplate(src string) string {
	b, _ := json.Marshal(src) // marshaling a string cannot fail
	return string(b)
}

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// DefaultOptions returns the built-in templates, encoded. Submissions is left empty.
func DefaultOptions() Options {
	read := func(name string) string {
		b, err := defaultTemplates.ReadFile("templates/" + name)
		if err != nil {
			panic(fmt.Sprintf("embedded template %s missing: %v", name, err))
		}
		return EncodeTemplate(string(b))
	}
	return Options{
		SubmissionsTpl:   read("submissions.tmpl"),
		UserLinkTpl:      read("user_link.tmpl"),
		PresenterLinkTpl: read("presenter_link.tmpl"),
		UserTextTpl:      read("user_text.tmpl"),
	}
}
