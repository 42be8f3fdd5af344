// Package http implements the HTTP handlers of the dashboard API.
//
// Handlers stay thin: they parse and validate query parameters, call the
// service layer and render JSON with go-chi/render. Service errors are
// converted with services.MapError and written as RFC 7807 problem details by
// the shared ErrorHandler.
//
// # Routes
//
//	GET /api/dashboard                 full dashboard for ?start=&end=&top=
//	GET /api/dashboard/range           dataset bounds
//	GET /api/dashboard/daily           daily orders and revenue
//	GET /api/dashboard/categories      best and worst categories
//	GET /api/dashboard/reviews         best recommended categories
//	GET /api/dashboard/export.xlsx     workbook with charts
//	GET /api/dashboard/export.csv      one view as CSV (?view=)
//	GET /api/health[/ready|/live]      health checks
//	GET /api/version                   build information
package http
