// ABOUTME: Help display for the mealdash CLI with grouped flags, environment
// ABOUTME: variables, and usage examples.
package main

import (
	"fmt"
	"io"
	"os"
)

// printHelp writes a formatted help message to w, including usage patterns,
// flags, environment variables, and examples.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "mealdash %s — food-delivery API server\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mealdash [flags]           Start the API server")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -bind <addr>          Listen address (default: 127.0.0.1:8470)")
	fmt.Fprintln(w, "  -db <path>            SQLite database path (default: ~/.mealdash/mealdash.db)")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MEALDASH_SECRET            HMAC secret for token signing (required)")
	fmt.Fprintln(w, "  MEALDASH_BIND              Listen address")
	fmt.Fprintln(w, "  MEALDASH_ALLOW_REMOTE      Allow non-loopback binds (true/false)")
	fmt.Fprintln(w, "  MEALDASH_DB                SQLite database path")
	fmt.Fprintln(w, "  MEALDASH_ACCESS_TTL        Access token lifetime (default: 24h)")
	fmt.Fprintln(w, "  MEALDASH_REFRESH_TTL       Refresh token lifetime (default: 168h)")
	fmt.Fprintln(w, "  MEALDASH_DEFAULT_LOCALE    Fallback locale (default: zh)")
	fmt.Fprintln(w, "  MEALDASH_OPEN_REGISTRATION Allow self-service signup (default: true)")
	fmt.Fprintln(w, "  MEALDASH_CONFIG            Optional YAML config overlay")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  MEALDASH_SECRET %s\n", envStatus("MEALDASH_SECRET"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  MEALDASH_SECRET=s3cret mealdash")
	fmt.Fprintln(w, "  mealdash -bind 127.0.0.1:9000 -db /tmp/dev.db")
	fmt.Fprintln(w, "  MEALDASH_ALLOW_REMOTE=true mealdash -bind 0.0.0.0:8470")
}

// envStatus reports whether an environment variable is set, without
// echoing its value.
func envStatus(name string) string {
	if os.Getenv(name) != "" {
		return "(set)"
	}
	return "(not set)"
}
