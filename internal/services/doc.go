// Package services holds the request-facing business logic of the dashboard.
//
// DashboardService turns a DashboardQuery into dashboard views: it resolves the
// date range against the loaded dataset, filters the order table once and runs
// the daily, category and review aggregators concurrently. HealthService
// reports liveness, readiness and the dataset status.
//
// Services return plain errors (ErrInvalidRange, ErrDatasetUnavailable,
// *QueryError); MapError converts them into API errors for the transports.
package services
