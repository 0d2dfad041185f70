// Package ui embeds the admin HTML pages served under /admin.
package ui

import "embed"

// Static holds the admin pages. They are plain HTML with no build step so
// the binary stays self-contained.
//
//go:embed static
var Static embed.FS
