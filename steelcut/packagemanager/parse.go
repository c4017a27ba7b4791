package packagemanager

import (
	"fmt"
	"regexp"
	"strings"
)

// UpdatePending scans `snap list` output for a row of the form
//
//	NAME-VERSION-REVISION  MARKER  VERSION-REVISION
//
// at the start of a line and reports whether MARKER is "<", i.e. the
// installed revision is older than the one available. Output that does not
// match is treated as up to date.
func UpdatePending(output, pkg string) bool {
	if pkg == "" {
		return false
	}
	pattern := fmt.Sprintf(`(?m)^(%s)-[\d.\w]+-[\d\w]+\s+(.)\s+[\d.\w]+-[\d\w]+\s+`, regexp.QuoteMeta(pkg))
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	match := re.FindStringSubmatch(output)
	return match != nil && match[2] == "<"
}

var refreshOK = regexp.MustCompile(`^OK`)

// RefreshUpToDate reports whether `snap refresh` output says there was
// nothing to do.
func RefreshUpToDate(output string) bool {
	return refreshOK.MatchString(output)
}

// NoPendingRefreshes reports whether `snap refresh --list` output lists no
// candidate refreshes.
func NoPendingRefreshes(output string) bool {
	trimmed := strings.TrimSpace(output)
	return trimmed == "" || strings.Contains(trimmed, "All snaps up to date")
}
