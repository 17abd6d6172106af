package churchsite

import "embed"

// EmbeddedAssets contains the static assets shipped with the site:
// site.css, site.js and favicon.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
