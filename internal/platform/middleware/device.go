package middleware

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"facegate/pkg/requestcontext"
)

// DeviceName parses the User-Agent into a short display name and stores it in
// the context. Check events record which device submitted the sample, and raw
// user-agent strings are too noisy to store verbatim.
func DeviceName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithDeviceName(r.Context(), ParseUserAgent(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseUserAgent converts a raw User-Agent into a "Browser on OS" display
// name. Returns "Unknown Device" when the string is empty or unparseable.
func ParseUserAgent(rawUA string) string {
	if strings.TrimSpace(rawUA) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	osName := ua.OSInfo().Name

	switch {
	case browser != "" && osName != "":
		return browser + " on " + osName
	case browser != "":
		return browser
	case osName != "":
		return osName
	default:
		return "Unknown Device"
	}
}
