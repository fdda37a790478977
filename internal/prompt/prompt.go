package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/akolanti/DermaRAG/internal/config"
)

var ErrEmptyTemplate = errors.New("prompt template is empty")

// Input carries the three values the few-shot template is rendered with.
type Input struct {
	TranslatedConversation string
	RaagReference          string
	Question               string
}

type Builder struct {
	tmpl *template.Template
}

func NewBuilder(text string) (*Builder, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyTemplate
	}
	t, err := template.New("few-shot").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Builder{tmpl: t}, nil
}

// Default uses config.FewShotPrompt.
func Default() *Builder {
	b, err := NewBuilder(config.FewShotPrompt)
	if err != nil {
		panic(err)
	}
	return b
}

// Load reads a template from path, or returns Default when path is empty.
func Load(path string) (*Builder, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return NewBuilder(string(raw))
}

func (b *Builder) Build(in Input) (string, error) {
	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}

// JoinReferences concatenates passage contents one per line.
func JoinReferences(passages []string) string {
	return strings.Join(passages, "\n")
}
