package docs

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// UIHandler serves the Swagger UI wired to /swagger.json, matching the
// teacher's mount point (/swagger, /swagger/*) but via swaggo's
// http-swagger handler rather than a hand-rolled HTML page.
func UIHandler() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL("/swagger.json"))
}
