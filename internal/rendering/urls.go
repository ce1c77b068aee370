package rendering

import (
	"net/url"
	"strings"
)

// hrefReplacer makes a URL safe inside a \href argument. Characters LaTeX
// would interpret are percent-encoded, and the remaining % and # are escaped.
var hrefReplacer = strings.NewReplacer(
	`%`, `\%`,
	`#`, `\#`,
	`\`, `\%5C`,
	`{`, `\%7B`,
	`}`, `\%7D`,
	`~`, `\%7E`,
	`_`, `\%5F`,
	`^`, `\%5E`,
	`$`, `\%24`,
	`&`, `\%26`,
	` `, `\%20`,
)

// SafeURL returns raw as an http(s) URL ready for a LaTeX \href, or ""
// when raw is not a usable web address. Bare hosts get an https scheme.
func SafeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return hrefReplacer.Replace(u.String())
}

// DisplayURL strips the http(s) scheme for display.
func DisplayURL(raw string) string {
	s := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimPrefix(s, prefix)
		}
	}
	return s
}
