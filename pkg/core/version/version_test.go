package version

import (
	"regexp"
	"strings"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionIsSemver(t *testing.T) {
	if !semverRegex.MatchString(Version) {
		t.Errorf("Version %q is not semantic", Version)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "retroscribe/") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.HasSuffix(ua, Version) {
		t.Errorf("UserAgent() = %q, want suffix %q", ua, Version)
	}
}
