// Package strategy holds decorators that change how a model is called without
// touching loading or orchestration.
package strategy

import (
	"context"
	"strings"

	"textsum/internal/port"
)

// DefaultTemplate is used when no template is configured.
const DefaultTemplate = "Summarize the following text: {text}"

const placeholder = "{text}"

// Prompted wraps the input in a template before delegating to the model.
type Prompted struct {
	model    port.Model
	template string
}

func NewPrompted(model port.Model, template string) *Prompted {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &Prompted{model: model, template: template}
}

func (p *Prompted) Invoke(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	return p.model.Invoke(ctx, Render(p.template, text), minLength, maxLength)
}

// Render substitutes text for every {text} in template. A template without the
// placeholder gets the text appended on a new line.
func Render(template, text string) string {
	if !strings.Contains(template, placeholder) {
		return template + "\n\n" + text
	}
	return strings.ReplaceAll(template, placeholder, text)
}
