// Package appfs embeds the assets shipped inside the binary: database
// migrations and email templates.
package appfs

import "embed"

// all: is needed so the underscore-prefixed base layout templates are
// embedded too; go:embed skips _* files by default.
//
//go:embed migrations all:assets/templates/email
var FS embed.FS
