package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Variant is a named model configuration selectable per request.
type Variant struct {
	Name        string
	Model       string
	Temperature float32
}

// DefaultVariants are the model variants exposed to callers. Reasoning models only run at temperature 1.
var DefaultVariants = []Variant{
	{Name: "4o", Model: "gpt-4o", Temperature: 0},
	{Name: "4o-mini", Model: "gpt-4o-mini", Temperature: 0},
	{Name: "o1", Model: "o1-preview", Temperature: 1},
	{Name: "o1-mini", Model: "o1-mini", Temperature: 1},
	{Name: "o3-mini", Model: "o3-mini", Temperature: 1},
}

// Registry maps variant names to generators.
type Registry struct {
	defaultName string
	generators  map[string]Generator
}

// NewRegistry creates a registry. defaultName must be one of the registered names.
func NewRegistry(defaultName string, generators map[string]Generator) (*Registry, error) {
	if len(generators) == 0 {
		return nil, fmt.Errorf("no model variants registered")
	}
	key := strings.ToLower(strings.TrimSpace(defaultName))
	normalized := make(map[string]Generator, len(generators))
	for name, gen := range generators {
		normalized[strings.ToLower(name)] = gen
	}
	if _, ok := normalized[key]; !ok {
		return nil, fmt.Errorf("default model variant %q is not registered", defaultName)
	}
	return &Registry{defaultName: key, generators: normalized}, nil
}

// NewVariantRegistry binds every variant to chat. When localModel is set, every variant
// sends that model name instead of its own (single-model local servers).
func NewVariantRegistry(chat Chatter, variants []Variant, defaultName, localModel string) (*Registry, error) {
	generators := make(map[string]Generator, len(variants))
	for _, v := range variants {
		model := v.Model
		if localModel != "" {
			model = localModel
		}
		generators[v.Name] = NewPromptGenerator(chat, ChatParams{Model: model, Temperature: v.Temperature})
	}
	return NewRegistry(defaultName, generators)
}

// Resolve returns the generator registered under name and the variant name actually used.
// Unknown or empty names resolve to the default variant.
func (r *Registry) Resolve(name string) (Generator, string) {
	key := strings.ToLower(strings.TrimSpace(name))
	if gen, ok := r.generators[key]; ok {
		return gen, key
	}
	return r.generators[r.defaultName], r.defaultName
}

// Default returns the default variant name.
func (r *Registry) Default() string {
	return r.defaultName
}

// Names returns the registered variant names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
