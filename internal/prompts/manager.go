package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

const (
	ModeGenerate   = "generate_questions"
	ModeEvaluate   = "evaluate_answer"
	ModeTranscribe = "transcribe_audio"

	VariantFull    = "full"
	VariantFocused = "focused"
	VariantTyped   = "typed"
	VariantVoice   = "voice"
	VariantDefault = "default"
)

type compiledPrompt struct {
	system *template.Template
	user   *template.Template
}

type PromptManager struct {
	prompts map[string]map[string]*compiledPrompt // mode -> variant -> templates
}

// loaded prompt file
type PromptTemplate struct {
	Description string                     `yaml:"description"`
	System      string                     `yaml:"system"`
	Variants    map[string]VariantTemplate `yaml:"variants"`
}

type VariantTemplate struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[string]map[string]*compiledPrompt),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// renders the system and user parts of mode/variant with data
func (pm *PromptManager) BuildPrompt(mode, variant string, data interface{}) (*models.Prompt, error) {
	modePrompts, exists := pm.prompts[mode]
	if !exists {
		return nil, fmt.Errorf("template not found for mode: %s", mode)
	}

	compiled, exists := modePrompts[variant]
	if !exists {
		return nil, fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}

	prompt := &models.Prompt{}
	var buf bytes.Buffer
	if compiled.system != nil {
		if err := compiled.system.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s/%s system prompt: %w", mode, variant, err)
		}
		prompt.System = strings.TrimSpace(buf.String())
		buf.Reset()
	}

	if err := compiled.user.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s/%s user prompt: %w", mode, variant, err)
	}
	prompt.User = strings.TrimSpace(buf.String())

	return prompt, nil
}

// user templates keyed by mode and variant
func (pm *PromptManager) GetTemplates() map[string]map[string]*template.Template {
	out := make(map[string]map[string]*template.Template, len(pm.prompts))
	for mode, variants := range pm.prompts {
		out[mode] = make(map[string]*template.Template, len(variants))
		for name, compiled := range variants {
			out[mode][name] = compiled.user
		}
	}
	return out
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[name] = make(map[string]*compiledPrompt)

		for variant, vt := range promptTemplate.Variants {
			if strings.TrimSpace(vt.User) == "" {
				return fmt.Errorf("template %s/%s has no user prompt", name, variant)
			}

			compiled := &compiledPrompt{}
			var system strings.Builder
			if promptTemplate.System != "" {
				system.WriteString(promptTemplate.System)
				system.WriteString("\n")
			}
			system.WriteString(vt.System)

			if strings.TrimSpace(system.String()) != "" {
				compiled.system, err = parse(name+"/"+variant+"/system", system.String())
				if err != nil {
					return err
				}
			}
			compiled.user, err = parse(name+"/"+variant+"/user", vt.User)
			if err != nil {
				return err
			}

			pm.prompts[name][variant] = compiled
		}
	}

	return nil
}

func parse(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to compile template %s: %w", name, err)
	}
	return t, nil
}

// PromptProvider is what handlers need from the prompt manager.
type PromptProvider interface {
	BuildPrompt(mode, variant string, data interface{}) (*models.Prompt, error)
	GetTemplates() map[string]map[string]*template.Template
}

var _ PromptProvider = (*PromptManager)(nil)
