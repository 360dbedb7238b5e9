package middleware

import (
	"net/http"
	"strconv"

	"facegate/pkg/requestcontext"
)

// PresenceMetadata extracts station-reported presence signals into the
// context: the WiFi network name and, when both coordinates parse, the
// client position. Attestors downstream decide what the signals mean.
func PresenceMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if ssid := r.Header.Get("X-Network-SSID"); ssid != "" {
			ctx = requestcontext.WithNetworkSSID(ctx, ssid)
		}

		lat, latErr := strconv.ParseFloat(r.Header.Get("X-Latitude"), 64)
		lon, lonErr := strconv.ParseFloat(r.Header.Get("X-Longitude"), 64)
		if latErr == nil && lonErr == nil {
			ctx = requestcontext.WithClientCoordinates(ctx, requestcontext.Coordinates{
				Latitude:  lat,
				Longitude: lon,
			})
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
