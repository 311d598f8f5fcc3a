package atidraw

import _ "embed"

// Version is the release version of atidraw, read from the VERSION file.
//
//go:embed VERSION
var Version string
