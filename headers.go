package gallery

import stealth "github.com/anatolykoptev/go-stealth"

// defaultUserAgent is the fallback User-Agent when no browser profile is set.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// apiHeaders returns the headers sent with every backend request.
// token is the moderator bearer token; empty for anonymous reads.
func apiHeaders(token, userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	h := map[string]string{
		"accept":          "application/json, text/plain, */*",
		"accept-language": "es-AR,es;q=0.9,en;q=0.8",
		"content-type":    "application/json",
		"user-agent":      userAgent,
	}
	if token != "" {
		h["authorization"] = "Bearer " + token
	}
	if ch := stealth.ClientHintsHeaders(userAgent); ch != nil {
		for k, v := range ch {
			h[k] = v
		}
	}
	return h
}

// apiHeaderOrder keeps header order stable across requests.
var apiHeaderOrder = []string{
	"authorization",
	"content-type",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
}
