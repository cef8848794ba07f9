package gallery

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint describes one backend operation.
type Endpoint struct {
	Method string
	Path   string // may contain a single %s placeholder
	Auth   bool   // requires a moderator session
}

// Endpoints maps operation names to their method and path.
var Endpoints = map[string]Endpoint{
	"Tweets":      {Method: http.MethodGet, Path: "/tweets"},
	"UsersCount":  {Method: http.MethodGet, Path: "/users/count"},
	"DeleteTweet": {Method: http.MethodDelete, Path: "/tweets/%s", Auth: true},
	"BanUser":     {Method: http.MethodPost, Path: "/users/ban", Auth: true},
	"Login":       {Method: http.MethodPost, Path: "/auth/login"},
}

// endpointURL returns the full URL for a named operation, or an error if unknown.
func (c *Client) endpointURL(operation string, arg ...string) (Endpoint, string, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return Endpoint{}, "", fmt.Errorf("unknown operation: %s", operation)
	}
	path := ep.Path
	if strings.Contains(path, "%s") {
		if len(arg) == 0 || arg[0] == "" {
			return Endpoint{}, "", fmt.Errorf("%s: missing path argument", operation)
		}
		path = fmt.Sprintf(path, url.PathEscape(arg[0]))
	}
	return ep, c.cfg.APIURL + path, nil
}

// tweetsQuery renders the paging query string of the tweets endpoint.
func tweetsQuery(page, perPage int) string {
	return "page=" + strconv.Itoa(page) + "&perPage=" + strconv.Itoa(perPage)
}
