// Package dashboard embeds the HTML templates and styles served by the
// run history dashboard.
package dashboard

import "embed"

//go:embed assets
var Assets embed.FS

//go:embed templates
var Templates embed.FS
