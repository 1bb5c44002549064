package generation

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// metadataPromptData is the data passed to the metadata template
type metadataPromptData struct {
	Theme        string
	Style        string
	SectionLabel string
	Names        []string
	Part         int
	Parts        int
}

// imagePromptData is the data passed to the image template
type imagePromptData struct {
	Instruction  string
	Style        string
	HasReference bool
}

// Prompts renders the prompts sent to the generation service.
type Prompts struct {
	metadata *template.Template
	image    *template.Template
}

// NewPrompts parses the prompt templates. An empty path selects the built-in
// template for that prompt.
func NewPrompts(metadataPath, imagePath string) (*Prompts, error) {
	metadata, err := loadTemplate("metadata", metadataPath, "templates/metadata.tmpl")
	if err != nil {
		return nil, err
	}
	image, err := loadTemplate("image", imagePath, "templates/image.tmpl")
	if err != nil {
		return nil, err
	}
	return &Prompts{metadata: metadata, image: image}, nil
}

// DefaultPrompts returns the built-in templates. It panics only if the embedded
// templates fail to parse.
func DefaultPrompts() *Prompts {
	p, err := NewPrompts("", "")
	if err != nil {
		panic(err)
	}
	return p
}

func loadTemplate(name, path, builtin string) (*template.Template, error) {
	var content []byte
	var err error
	if path == "" {
		content, err = templateFS.ReadFile(builtin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s prompt template: %v", ErrInvalidConfig, name, err)
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s prompt template: %v", ErrInvalidConfig, name, err)
	}
	return tmpl, nil
}

// Metadata renders the metadata prompt for one sub-request.
func (p *Prompts) Metadata(req MetadataRequest) (string, error) {
	if len(req.Names) == 0 {
		return "", fmt.Errorf("%w: metadata request has no card names", ErrGenerationFailed)
	}

	part, parts := req.Part, req.Parts
	if parts < 1 {
		part, parts = 1, 1
	}

	data := metadataPromptData{
		Theme:        req.Theme,
		Style:        req.Style,
		SectionLabel: req.Section.Label(),
		Names:        req.Names,
		Part:         part,
		Parts:        parts,
	}

	var buf bytes.Buffer
	if err := p.metadata.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute metadata prompt template: %w", err)
	}
	return buf.String(), nil
}

// Image renders the image prompt for one instruction.
func (p *Prompts) Image(req ImageRequest) (string, error) {
	if req.Instruction == "" {
		return "", ErrEmptyInstruction
	}

	data := imagePromptData{
		Instruction:  req.Instruction,
		Style:        req.Style,
		HasReference: req.Reference != nil && len(req.Reference.Data) > 0,
	}

	var buf bytes.Buffer
	if err := p.image.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute image prompt template: %w", err)
	}
	return buf.String(), nil
}
