package docs

import _ "embed"

// SafeRouteSpec is the embedded API document served on /spec and by the
// spec CLI command.
//
//go:embed api.md
var SafeRouteSpec string
