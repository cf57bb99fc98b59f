// Package shared holds helpers used by more than one package.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- NewTestLogger, a slog logger that captures records for assertions
//	- Fixture CSVs describing a small known world (two London boroughs,
//	  one non-London authority, two stations) and the model_data.csv they
//	  produce, plus helpers to write them into t.TempDir()
//
// Example usage:
//
//	func TestClean(t *testing.T) {
//	    dir := testutil.WriteCleanerInputs(t)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
