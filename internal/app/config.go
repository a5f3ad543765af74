package app

// Config carries the fully parsed application configuration from the CLI.
type Config struct {
	// ProgramPath is the .hcl program file to analyze.
	ProgramPath string
	// KindsPath optionally points at a directory of op-kind manifests.
	KindsPath string

	LogLevel  string
	LogFormat string

	// ReportFormat selects the analysis report encoding: "yaml" or "text".
	ReportFormat string
}
