// Package openapi embeds the OpenAPI description of the HTTP API.
package openapi

import _ "embed"

//go:embed openapi.yaml
var Document []byte
