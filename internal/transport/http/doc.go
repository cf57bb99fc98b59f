// Package http implements the report server's HTTP handlers. Handlers stay
// thin: they parse and validate the request, call the service layer, and
// render JSON with go-chi/render or HTML from the report templates.
//
// # Routes
//
//	GET /                                  report page
//	GET /maps/stations                     station map (iframe)
//	GET /maps/expansion                    expansion map (iframe)
//	GET /api/charts/{chart}?metric=        bar chart data (obesity, change, deprivation)
//	GET /api/charts/{chart}/options        dropdown options of a chart
//	GET /api/health                        load status
//	GET /api/health/live                   liveness
//	GET /api/version                       build information
//	GET /api/data/profiles                 combined table as JSON
//	GET /api/data/download/model_data.csv  combined table as CSV
//	GET /metrics                           Prometheus exposition
//
// # Error Handling
//
// Every error goes through errors.ErrorHandler and is answered with an
// RFC 7807 problem document; an unknown metric is a 400, data that was
// never loaded a 503.
package http
