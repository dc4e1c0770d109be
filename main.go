// =============================================================================
// CSV Gratuity Report - Main Entry Point
// =============================================================================
//
// USAGE:
//   gratuity process [file]   - Total a CSV file and write the report
//   gratuity inspect <report> - Show the totals of a report
//   gratuity config init      - Write the default configuration
//   gratuity version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Pipeline stages, configuration and terminal helpers
//   - pkg/       : Shared utilities (logging, file management)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/csv-gratuity-report/cmd"
)

func main() {
	cmd.Execute()
}
