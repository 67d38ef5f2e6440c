// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors for overlayd's domain
// operations. HTTP-level metrics live in the middleware package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinksCreated counts successful link inserts via API or seed.
	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlayd_links_created_total",
		Help: "Number of overlay links created",
	})

	// LinksUpdated counts successful link updates.
	LinksUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlayd_links_updated_total",
		Help: "Number of overlay links updated",
	})

	// LinksDeleted counts successful link deletions.
	LinksDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlayd_links_deleted_total",
		Help: "Number of overlay links deleted",
	})

	// SeedLoaded counts links imported from the seed file.
	SeedLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlayd_seed_links_loaded_total",
		Help: "Number of overlay links imported from the seed file",
	})

	// SeedSkipped counts seed entries rejected by validation.
	SeedSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlayd_seed_links_skipped_total",
		Help: "Number of seed file entries skipped as invalid",
	})

	// LayoutSaves counts layout configuration writes.
	LayoutSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlayd_layout_saves_total",
		Help: "Number of overlay layout configuration saves",
	})
)
