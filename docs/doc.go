// Package docs holds the OpenAPI header for the slidedeck HTTP API. Handler
// annotations live next to each endpoint in internal/server/endpoints.
//
// Slidedeck API
//
//	@title			Slidedeck API
//	@version		1.0
//	@description	Assemble PPTX decks from content descriptions and generate them with an LLM.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http
package docs
