// ABOUTME: Embeds the built-in locale bundles so the binary ships with its
// ABOUTME: translations and needs no locale directory at runtime.
package i18n

import (
	"embed"
	"io/fs"
)

//go:embed locales
var bundleFS embed.FS

// NewEmbedded creates a Manager over the bundles compiled into the binary.
func NewEmbedded(defaultLocale string) *Manager {
	sub, err := fs.Sub(bundleFS, "locales")
	if err != nil {
		// The embedded tree always contains locales/; this cannot fail at runtime.
		panic(err)
	}
	return NewManager(sub, defaultLocale)
}
