// Package data holds the default seed files.
package data

import _ "embed"

//go:embed catalog.json
var Catalog []byte

//go:embed users.json
var Users []byte
