package schemas

import "embed"

// SchemasFS содержит JSON-схемы событий, зашитые в бинарник
//
//go:embed events
var SchemasFS embed.FS
