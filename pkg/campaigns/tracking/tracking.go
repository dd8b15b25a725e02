package tracking

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	anchorHrefRegex = regexp.MustCompile(`(?i)(<a\b[^>]*?\bhref=)("([^"]*)"|'([^']*)')`)
	closingBodyTag  = regexp.MustCompile(`(?i)</body>`)
)

// URLBuilder produces the tracking endpoint URLs embedded into outgoing
// content, scoped to one instance.
type URLBuilder struct {
	BaseURL    string
	InstanceID string
}

// NewTrackingID returns the identifier that links a message to its later open
// and click events. Generated exactly once per message at creation time.
func NewTrackingID() string {
	return uuid.NewString()
}

func (b URLBuilder) openPath() string {
	return fmt.Sprintf("%s/t/%s/open/", strings.TrimSuffix(b.BaseURL, "/"), b.InstanceID)
}

func (b URLBuilder) clickPath() string {
	return fmt.Sprintf("%s/t/%s/click/", strings.TrimSuffix(b.BaseURL, "/"), b.InstanceID)
}

func (b URLBuilder) OpenURL(trackingID string) string {
	return b.openPath() + trackingID
}

func (b URLBuilder) ClickURL(trackingID string, originalURL string) string {
	return b.clickPath() + trackingID + "?url=" + url.QueryEscape(originalURL)
}

func (b URLBuilder) UnsubscribeURL(token string) string {
	return fmt.Sprintf("%s/t/%s/unsubscribe/%s", strings.TrimSuffix(b.BaseURL, "/"), b.InstanceID, token)
}

// InjectTracking rewrites rendered HTML so that opens and clicks can be
// attributed to the message behind trackingID: every anchor href is routed
// through the click endpoint (other anchor attributes stay untouched) and a
// 1x1 beacon image is placed immediately before the closing body tag, or
// appended when the content has none. Content that already carries a beacon
// for this instance is returned unchanged, so re-processing a stored message
// cannot double-insert tracking.
func (b URLBuilder) InjectTracking(html string, trackingID string) string {
	if strings.Contains(html, b.openPath()) {
		return html
	}

	withLinks := anchorHrefRegex.ReplaceAllStringFunc(html, func(match string) string {
		parts := anchorHrefRegex.FindStringSubmatch(match)
		// parts[2] is the quoted value, either double or single quoted
		quote := parts[2][:1]
		href := parts[3]
		if quote == "'" {
			href = parts[4]
		}
		if !isTrackableLink(href) || b.isOwnEndpoint(href) {
			return match
		}
		return parts[1] + quote + b.ClickURL(trackingID, href) + quote
	})

	beacon := fmt.Sprintf(`<img src="%s" width="1" height="1" style="display:none;" alt=""/>`, b.OpenURL(trackingID))

	loc := closingBodyTag.FindStringIndex(withLinks)
	if loc == nil {
		return withLinks + beacon
	}
	return withLinks[:loc[0]] + beacon + withLinks[loc[0]:]
}

// isOwnEndpoint reports whether the href already points at one of the
// tracking endpoints (click, open, unsubscribe); those must not be wrapped
// again.
func (b URLBuilder) isOwnEndpoint(href string) bool {
	return strings.HasPrefix(href, strings.TrimSuffix(b.BaseURL, "/")+"/t/")
}

// isTrackableLink filters out hrefs that cannot meaningfully be routed
// through a redirect (anchors, mailto, tel).
func isTrackableLink(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	lower := strings.ToLower(href)
	return !strings.HasPrefix(lower, "mailto:") && !strings.HasPrefix(lower, "tel:")
}
