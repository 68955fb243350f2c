// Package fixtures embeds the default local job fixture.
package fixtures

import _ "embed"

// Jobs is an upstream-shaped search response used when the service runs
// against local data without a fixture path.
//
//go:embed jobs.json
var Jobs []byte
