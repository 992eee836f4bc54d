package parser

import (
	"fmt"
	"log"
	"sort"

	"finextract/internal/config"
	"finextract/internal/port"
)

// ProviderFactory is a function that creates a DocumentParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.DocumentParser, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// Providers returns the registered provider names in sorted order.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewParser creates a DocumentParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the escalation parser from the primary, secondary and tertiary
// provider slots. Slots without credentials are skipped. It returns nil, nil when no
// slot is usable, which disables escalation. A single usable slot is returned as is;
// several are chained with a FallbackParser.
func NewFromConfig(cfg *config.ParserConfig) (port.DocumentParser, error) {
	slots := []*config.ParserProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()}

	var parsers []port.DocumentParser
	var names []string
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		if !slot.Enabled() {
			log.Printf("parser.NewFromConfig: provider %q has no API key, skipping", slot.Provider)
			continue
		}
		p, err := NewParser(slot)
		if err != nil {
			return nil, err
		}
		parsers = append(parsers, p)
		names = append(names, slot.Provider)
	}

	switch len(parsers) {
	case 0:
		return nil, nil
	case 1:
		return parsers[0], nil
	default:
		return NewFallbackParser(parsers, names), nil
	}
}
