package jawbone

import "fmt"

const (
	defaultBaseURL = "https://jawbone.com"
	apiPrefix      = "/nudge/api/v.1.1"
	userInfix      = "users/@me"
)

// typePaths maps a record type to its path segment in the Jawbone API.
var typePaths = map[string]string{
	"heartrates": "heartrates",
	"sleeps":     "sleeps",
	"steps":      "moves",
}

// pageURL builds the first-page listing URL for a record type.
func (c *Client) pageURL(recordType string) (string, error) {
	path, ok := typePaths[recordType]
	if !ok {
		return "", fmt.Errorf("jawbone: unsupported record type %q", recordType)
	}
	return fmt.Sprintf("%s%s/%s/%s", c.base, apiPrefix, userInfix, path), nil
}

// detailURL builds the high-resolution ticks URL for one record.
func (c *Client) detailURL(recordType, xid string) (string, error) {
	path, ok := typePaths[recordType]
	if !ok {
		return "", fmt.Errorf("jawbone: unsupported record type %q", recordType)
	}
	return fmt.Sprintf("%s%s/%s/%s/ticks", c.base, apiPrefix, path, xid), nil
}
