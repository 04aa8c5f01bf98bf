package agent

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildTaskWithEnvironment adds the source's domain and starting section to
// the user task so that the model stays on the trusted site.
func BuildTaskWithEnvironment(rawTask, startURL string) string {
	u, err := url.Parse(startURL)
	if err != nil || u.Host == "" {
		return rawTask
	}

	host := strings.ToLower(u.Host)
	path := strings.TrimRight(u.Path, "/")

	var pathNote string
	if path != "" {
		pathNote = fmt.Sprintf(
			"\nThe source section starts at path %s. Prefer headlines inside this section "+
				"and do not switch to unrelated top-level sections through the site menu.", path)
	}

	return fmt.Sprintf(
		"You are working on the site %s.\nStart page: %s.%s\n\n"+
			"Do not go to other domains and do not open external search engines.\n\n"+
			"User task:\n%s",
		host, startURL, pathNote, rawTask,
	)
}
