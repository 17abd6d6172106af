package api

import (
	"net"
	"net/url"
	"strings"
)

const (
	// DevelopmentBaseURL is used when the site runs on a local host.
	DevelopmentBaseURL = "http://localhost:5000/api"
	// ProductionBaseURL is used for any other host.
	ProductionBaseURL = "https://tga.api.farmsolutionss.com/api"
)

// BaseURLSource records which rule picked the API root.
type BaseURLSource string

const (
	SourceRuntime  BaseURLSource = "runtime"
	SourceBuild    BaseURLSource = "build"
	SourceHostname BaseURLSource = "hostname"
)

// ResolveBaseURL picks the API root. A runtime value (flag, environment or
// config file) wins over the value baked in at build time, which wins over
// a guess from the host the site is served on. Trailing slashes are removed.
func ResolveBaseURL(runtime, build, siteURL string) (string, BaseURLSource) {
	if v := strings.TrimSpace(runtime); v != "" {
		return strings.TrimRight(v, "/"), SourceRuntime
	}
	if v := strings.TrimSpace(build); v != "" {
		return strings.TrimRight(v, "/"), SourceBuild
	}
	if isLocalHost(hostOf(siteURL)) {
		return DevelopmentBaseURL, SourceHostname
	}
	return ProductionBaseURL, SourceHostname
}

func hostOf(siteURL string) string {
	s := strings.TrimSpace(siteURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func isLocalHost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
