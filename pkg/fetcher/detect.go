package fetcher

import "strings"

// DetectChallenge reports which kind of challenge or block page the markup
// is, or "" for ordinary content.
func DetectChallenge(title, html string) string {
	titleLower := strings.ToLower(title)
	htmlLower := strings.ToLower(html)

	// Cloudflare challenges
	if strings.Contains(titleLower, "just a moment") ||
		strings.Contains(titleLower, "attention required") ||
		strings.Contains(htmlLower, "cf-challenge") ||
		strings.Contains(htmlLower, "cf_chl_opt") {
		return "cloudflare"
	}

	if strings.Contains(htmlLower, "challenges.cloudflare.com/turnstile") ||
		strings.Contains(htmlLower, "cf-turnstile") {
		return "cloudflare-turnstile"
	}

	if strings.Contains(htmlLower, "hcaptcha.com") ||
		strings.Contains(htmlLower, "h-captcha") {
		return "hcaptcha"
	}

	if strings.Contains(htmlLower, "google.com/recaptcha") ||
		strings.Contains(htmlLower, "g-recaptcha") {
		return "recaptcha"
	}

	// Akamai-style block pages served by large marketplaces
	if strings.Contains(titleLower, "access denied") ||
		strings.Contains(titleLower, "bot detection") ||
		strings.Contains(htmlLower, "robot or human") {
		return "anti-bot"
	}

	return ""
}

// needsJavaScript reports whether a statically fetched page looks like an
// unrendered client-side application shell.
func needsJavaScript(c Content) bool {
	html := strings.ToLower(c.HTML)

	spaMarkers := []string{
		`<div id="root"></div>`,
		`<div id="app"></div>`,
		`<div id="__next"></div>`,
		`<div id="__nuxt"></div>`,
		"<app-root></app-root>",
		"ng-app",
		"v-cloak",
	}
	for _, marker := range spaMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}

	if i := strings.Index(html, "<noscript>"); i >= 0 {
		rest := html[i+len("<noscript>"):]
		if j := strings.Index(rest, "</noscript>"); j >= 0 {
			rest = rest[:j]
		}
		if strings.Contains(rest, "enable javascript") || strings.Contains(rest, "javascript is required") {
			return true
		}
	}
	return false
}
