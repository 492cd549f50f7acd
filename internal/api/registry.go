package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes registers all endpoint HTTP routes with the given mux.
// initMiddleware wraps handlers that require the template index.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, initMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// Group is a named set of endpoints that become one CLI subcommand,
// e.g. "decks" for the deck endpoints.
type Group struct {
	Use       string
	Short     string
	Endpoints []Endpoint
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// Endpoints listed in a group are nested under that group's command; the
// rest are added directly. getServerURL is called at runtime.
func (r *Registry) BuildCommands(getServerURL func() string, groups ...Group) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running slidedeck server via HTTP.

These commands require a running server (slidedeck serve).
Use --server to specify a custom server URL.

Examples:
  slidedeck api health                         # Check server health
  slidedeck api layouts                        # List template layouts
  slidedeck api decks assemble --content s.json
  slidedeck api decks download <deck_id> -f deck.pptx`,
	}

	grouped := make(map[Endpoint]bool)
	for _, g := range groups {
		groupCmd := &cobra.Command{Use: g.Use, Short: g.Short}
		for _, ep := range g.Endpoints {
			groupCmd.AddCommand(ep.Command(getServerURL))
			grouped[ep] = true
		}
		apiCmd.AddCommand(groupCmd)
	}

	for _, ep := range r.endpoints {
		if grouped[ep] {
			continue
		}
		apiCmd.AddCommand(ep.Command(getServerURL))
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
