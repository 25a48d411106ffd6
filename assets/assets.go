// Package assets embeds the stylesheet, shell script, and page templates used by the site renderers.
package assets

import "embed"

// Templates holds the html/template sources for the dynamic shell and static pages
//
//go:embed templates/*.html
var Templates embed.FS

// Stylesheet is inlined into every generated page
//
//go:embed style.css
var Stylesheet string

// ShellScript drives the dynamic shell in the browser
//
//go:embed app.js
var ShellScript string
