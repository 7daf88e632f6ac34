package fetch

import (
	"encoding/json"
	"mime"
	"strings"

	"github.com/deckmeta/go-data/errs"
)

// jsonMediaType reports whether a declared media type may carry JSON.
// Servers that hit an error page tend to answer text/html with a 200; the
// content-type guard catches that before the JSON parser produces a
// confusing syntax error.
func jsonMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/json", "text/json":
		return true
	}
	return strings.HasSuffix(mediaType, "+json")
}

// decode validates and parses the raw response body as JSON.
func decode(resp *response, url string) (any, error) {
	body := string(resp.body)
	if strings.TrimSpace(body) == "" {
		return nil, errs.New(errs.Parse, "empty response body",
			errs.Context{URL: url, ContentType: resp.contentType})
	}
	if !jsonMediaType(resp.contentType) {
		return nil, errs.New(errs.Parse,
			"unexpected content type "+resp.contentType,
			errs.Context{URL: url, ContentType: resp.contentType, Preview: errs.Preview(body)})
	}
	var val any
	if err := json.Unmarshal(resp.body, &val); err != nil {
		return nil, errs.Wrap(err, errs.Parse, "invalid JSON: "+err.Error(),
			errs.Context{URL: url, ContentType: resp.contentType, Preview: errs.Preview(body)})
	}
	return val, nil
}
