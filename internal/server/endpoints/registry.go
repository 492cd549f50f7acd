package endpoints

import (
	"github.com/jackzampolin/slidedeck/internal/api"
)

// Set is every endpoint, with the instances needed to group CLI commands.
type Set struct {
	Health   *HealthEndpoint
	Status   *StatusEndpoint
	Layouts  *ListLayoutsEndpoint
	Assemble *AssembleEndpoint
	Outline  *OutlineEndpoint
	Generate *GenerateEndpoint
	ListDeck *ListDecksEndpoint
	GetDeck  *GetDeckEndpoint
	DelDeck  *DeleteDeckEndpoint
	LLMCalls *ListLLMCallsEndpoint
	Prompts  *ListPromptsEndpoint
}

// NewSet creates all endpoint instances.
func NewSet() *Set {
	return &Set{
		Health:   &HealthEndpoint{},
		Status:   &StatusEndpoint{},
		Layouts:  &ListLayoutsEndpoint{},
		Assemble: &AssembleEndpoint{},
		Outline:  &OutlineEndpoint{},
		Generate: &GenerateEndpoint{},
		ListDeck: &ListDecksEndpoint{},
		GetDeck:  &GetDeckEndpoint{},
		DelDeck:  &DeleteDeckEndpoint{},
		LLMCalls: &ListLLMCallsEndpoint{},
		Prompts:  &ListPromptsEndpoint{},
	}
}

// All returns all endpoint instances.
func (s *Set) All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		s.Health,
		s.Status,

		// Template endpoints
		s.Layouts,

		// Deck endpoints
		s.Assemble,
		s.Outline,
		s.Generate,
		s.ListDeck,
		s.GetDeck,
		s.DelDeck,

		// Traceability endpoints
		s.LLMCalls,
		s.Prompts,
	}
}

// Groups returns the CLI command groups for api.Registry.BuildCommands.
func (s *Set) Groups() []api.Group {
	return []api.Group{
		{
			Use:       "decks",
			Short:     "Assemble, generate and download decks",
			Endpoints: []api.Endpoint{s.Assemble, s.Outline, s.Generate, s.ListDeck, s.GetDeck, s.DelDeck},
		},
		{
			Use:       "llmcalls",
			Short:     "Inspect recorded LLM calls",
			Endpoints: []api.Endpoint{s.LLMCalls},
		},
	}
}

// Registry registers every endpoint of s.
func (s *Set) Registry() *api.Registry {
	reg := api.NewRegistry()
	for _, ep := range s.All() {
		reg.Register(ep)
	}
	return reg
}
