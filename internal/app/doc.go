// Package app wires the report server: configuration, logging, telemetry,
// the report service and the chi router.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, YAML and BIKEPULSE_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Create the report and health services
//	4. Register middleware and routes
//	5. Load model_data.csv and bikepoints.csv, then start serving
//	6. Open a browser tab once /api/health reports ok
//
// # Usage
//
//	application, err := app.NewApplication("")
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Snapshot runs steps 5 and 6 headlessly instead: it serves the page,
// captures it to a PNG with chromedp and shuts down.
//
// The package never calls os.Exit; errors are returned to main.
package app
