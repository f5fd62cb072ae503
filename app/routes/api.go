package routes

import (
	"github.com/shashiranjanraj/kuman/app/controllers"
	"github.com/shashiranjanraj/kuman/pkg/metrics"
	"github.com/shashiranjanraj/kuman/pkg/router"
)

// RegisterAPI mounts the read-only dashboard feed.
func RegisterAPI(r *router.Router, src controllers.SnapshotSource) {
	dashboard := controllers.NewDashboardController(src)

	r.Get("/healthz", "health", controllers.Health)
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")
	api.Get("/dashboard", "dashboard.show", dashboard.Show)
	api.Get("/dashboard/stream", "dashboard.stream", dashboard.Stream)
}
