// Package logger provides structured logging for pawkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("resilience")
//	log.Info("circuit breaker opened", logger.Fields("breaker", "device-api"))
package logger
