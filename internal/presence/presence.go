// Package presence attests that a subject is physically on site before an
// attendance action is allowed to proceed. Attestors answer from request
// metadata; they never block on external calls.
package presence

import (
	"context"

	"facegate/pkg/requestcontext"
)

// Attestor decides whether the current request originates on site.
type Attestor interface {
	IsPresentOnSite(ctx context.Context) (bool, error)
}

// StaticAttestor always answers the same. Used when presence checking is
// bypassed in configuration.
type StaticAttestor struct {
	Present bool
}

func (a StaticAttestor) IsPresentOnSite(context.Context) (bool, error) {
	return a.Present, nil
}

// WiFiAttestor accepts requests whose reported network SSID is in the
// allowed set. The SSID arrives as request metadata supplied by the capture
// station.
type WiFiAttestor struct {
	allowed map[string]struct{}
}

// NewWiFi creates a WiFi attestor for the given SSIDs.
func NewWiFi(ssids []string) *WiFiAttestor {
	allowed := make(map[string]struct{}, len(ssids))
	for _, ssid := range ssids {
		allowed[ssid] = struct{}{}
	}
	return &WiFiAttestor{allowed: allowed}
}

func (a *WiFiAttestor) IsPresentOnSite(ctx context.Context) (bool, error) {
	ssid := requestcontext.NetworkSSID(ctx)
	if ssid == "" {
		return false, nil
	}
	_, ok := a.allowed[ssid]
	return ok, nil
}
