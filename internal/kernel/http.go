// Package kernel assembles the HTTP handler of the local dashboard feed.
package kernel

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/kuman/app/controllers"
	"github.com/shashiranjanraj/kuman/app/routes"
	"github.com/shashiranjanraj/kuman/pkg/metrics"
	"github.com/shashiranjanraj/kuman/pkg/middleware"
	"github.com/shashiranjanraj/kuman/pkg/reqid"
	"github.com/shashiranjanraj/kuman/pkg/response"
	"github.com/shashiranjanraj/kuman/pkg/router"
)

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the feed over src.
//
// Global middleware, outermost first:
//  1. Prometheus metrics, for total latency
//  2. Recovery
//  3. Request ID, before anything logs
//  4. Logger
func NewHTTPKernel(src controllers.SnapshotSource) *HTTPKernel {
	r := router.New(response.NotFound, response.MethodNotAllowed)
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)

	routes.RegisterAPI(r, src)
	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

// Routes lists the named routes as name → path.
func (k *HTTPKernel) Routes() map[string]string {
	out := map[string]string{}
	for _, entry := range k.router.Names() {
		path, name, _ := strings.Cut(entry, " ")
		out[name] = path
	}
	return out
}
