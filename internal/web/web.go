// Package web carries the embedded upload page served at the site root. It
// is a thin presentation layer over the /predict endpoint.
package web

import _ "embed"

//go:embed index.html
var Index []byte
