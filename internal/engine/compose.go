package engine

import (
	"fmt"
	"strings"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

// DefaultReplyTemplate is the single reply format. %s is the author handle.
const DefaultReplyTemplate = "@%s thanks for the mention! We'll take a look."

// ReplyComposer turns a mention into reply text.
type ReplyComposer interface {
	Compose(mention domain.Mention) string
}

// TemplateComposer formats replies from a single template string.
type TemplateComposer struct {
	Template string
}

// NewTemplateComposer returns a composer for the given template, falling back
// to the default when empty.
func NewTemplateComposer(template string) *TemplateComposer {
	if strings.TrimSpace(template) == "" {
		template = DefaultReplyTemplate
	}
	return &TemplateComposer{Template: template}
}

// Compose renders the reply for a mention.
func (c *TemplateComposer) Compose(mention domain.Mention) string {
	return fmt.Sprintf(c.Template, mention.AuthorName)
}
