package device

import (
	"github.com/mileusna/useragent"
)

const (
	Unknown = "Unknown"

	TypeDesktop = "desktop"
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
)

type Classification struct {
	BrowserName    string `json:"browser_name"`
	BrowserVersion string `json:"browser_version"`
	OSName         string `json:"os_name"`
	OSVersion      string `json:"os_version"`
	DeviceType     string `json:"device_type"`
	IsMobile       bool   `json:"is_mobile"`
}

// Classify derives browser/OS/device facts from a raw user-agent string.
// It never fails: unparseable fields default to Unknown and the device
// class defaults to desktop.
func Classify(rawUA string) Classification {
	ua := useragent.Parse(rawUA)

	deviceType := TypeDesktop
	switch {
	case ua.Mobile:
		deviceType = TypeMobile
	case ua.Tablet:
		deviceType = TypeTablet
	}

	return Classification{
		BrowserName:    defaultIfEmpty(ua.Name),
		BrowserVersion: defaultIfEmpty(ua.Version),
		OSName:         defaultIfEmpty(ua.OS),
		OSVersion:      defaultIfEmpty(ua.OSVersion),
		DeviceType:     deviceType,
		IsMobile:       deviceType == TypeMobile || deviceType == TypeTablet,
	}
}

func defaultIfEmpty(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}
