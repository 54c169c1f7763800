package ir

// Version constants for the declaration format and tool.
const (
	// SpecVersion is the version of the CUE declaration format.
	SpecVersion = "1"

	// ToolVersion is the confflow version.
	ToolVersion = "0.1.0"
)
