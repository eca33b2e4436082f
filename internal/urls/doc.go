// Package urls holds the project links shown in help text, error hints and
// the panel footer, so they can be changed in one place.
//
// Usage:
//
//	import "github.com/muurk/screwctl/internal/urls"
//
//	fmt.Printf("Report problems at %s\n", urls.Issues)
package urls
