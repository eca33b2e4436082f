package urls

import "strings"

// Repository is the project home page.
const Repository = "https://github.com/muurk/screwctl"

// Issues is where users report bugs and controller quirks.
const Issues = Repository + "/issues"

// Display strips the scheme for compact rendering, e.g. in the panel footer.
func Display(url string) string {
	url = strings.TrimPrefix(url, "https://")
	return strings.TrimPrefix(url, "http://")
}
