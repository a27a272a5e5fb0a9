package metadata

import (
	"strings"

	"github.com/mssola/useragent"
)

// Device is a coarse description of the client software, used only in logs.
type Device struct {
	Name   string
	Mobile bool
	Bot    bool
}

// ParseDevice reduces a User-Agent to "Browser on OS" (or "Browser on
// Platform" for mobile clients) and flags crawlers.
func ParseDevice(userAgent string) Device {
	if strings.TrimSpace(userAgent) == "" {
		return Device{Name: "Unknown Device"}
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			os = platform
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return Device{
		Name:   strings.TrimSpace(browser + " on " + os),
		Mobile: ua.Mobile(),
		Bot:    ua.Bot(),
	}
}
