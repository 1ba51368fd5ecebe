// Package diag exposes resilience diagnostics over HTTP for health checks
// and operators: breaker state snapshots, per-breaker reset, and a service
// health summary.
//
//	h := diag.NewHandler("pet-hub", mgr)
//	r := gin.New()
//	h.Register(r)
//
// The routes only read manager state or perform administrative resets; the
// protected operations themselves never pass through this package.
package diag
