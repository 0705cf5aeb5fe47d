package responder

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBotName prefixes bot lines when no persona overrides it.
const DefaultBotName = "ChatBot"

// PersonaConfig describes the bot's presentation. It is read once at startup.
type PersonaConfig struct {
	BotName string             `json:"bot_name,omitempty" yaml:"bot_name,omitempty"`
	Traits  map[string]float64 `json:"traits,omitempty" yaml:"traits,omitempty"`

	// CasualTemplates replace the built-in fallback prompts. "{name}" is substituted.
	CasualTemplates []string `json:"casual_templates,omitempty" yaml:"casual_templates,omitempty"`
}

func DefaultPersona() PersonaConfig {
	return PersonaConfig{
		BotName: DefaultBotName,
		Traits: map[string]float64{
			"friendliness": 0.9,
			"curiosity":    0.8,
			"empathy":      0.8,
		},
	}
}

// Normalize fills missing fields from DefaultPersona, clamps trait weights to [0, 1]
// and drops blank templates.
func (p PersonaConfig) Normalize() PersonaConfig {
	def := DefaultPersona()
	p.BotName = strings.TrimSpace(p.BotName)
	if p.BotName == "" {
		p.BotName = def.BotName
	}
	if len(p.Traits) == 0 {
		p.Traits = def.Traits
	}
	traits := make(map[string]float64, len(p.Traits))
	for k, v := range p.Traits {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		traits[k] = min(max(v, 0), 1)
	}
	p.Traits = traits

	templates := p.CasualTemplates[:0:0]
	for _, t := range p.CasualTemplates {
		if t = strings.TrimSpace(t); t != "" {
			templates = append(templates, t)
		}
	}
	p.CasualTemplates = templates
	return p
}

// TraitNames returns the trait keys sorted for stable logging.
func (p PersonaConfig) TraitNames() []string {
	names := make([]string, 0, len(p.Traits))
	for k := range p.Traits {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadPersonaFile reads a persona document in YAML or JSON form.
func LoadPersonaFile(path string) (PersonaConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return PersonaConfig{}, fmt.Errorf("LoadPersonaFile: read: %w", err)
	}
	var p PersonaConfig
	if err := yaml.Unmarshal(b, &p); err != nil {
		return PersonaConfig{}, fmt.Errorf("LoadPersonaFile: decode: %w", err)
	}
	return p.Normalize(), nil
}
