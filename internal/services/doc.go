// Package services contains the business logic behind the HTTP API:
// on-demand demand prediction, product analytics over the pipeline's CSV
// artifacts, and health reporting. Handlers stay thin; services own the
// artifact access and the serving-time pricing policy.
package services
