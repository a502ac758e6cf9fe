// Package links builds file names and URLs for archive pages and for the
// original posts on the Zulip server.
package links

import (
	"fmt"
	"hash/adler32"
	"net/url"
	"strings"
)

// Sanitize keeps only the ASCII letters and digits of s.
func Sanitize(s string) string {
	var sb strings.Builder

	for _, r := range s {
		if r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

// SanitizeTopic is a file name safe identifier for a topic. The adler32
// prefix keeps topics apart whose names only differ in non ASCII characters.
func SanitizeTopic(topic string) string {
	return fmt.Sprintf("%05d%s", adler32.Checksum([]byte(topic))%100000, Sanitize(topic)) //nolint:mnd
}

// SanitizeStream is a file name safe identifier for a stream.
func SanitizeStream(stream string, streamID int64) string {
	return fmt.Sprintf("%d-%s", streamID, Sanitize(stream))
}

// ArchiveBase joins siteURL and htmlRoot the way a browser resolves a relative link.
func ArchiveBase(siteURL, htmlRoot string) string {
	base, err := url.Parse(siteURL)
	if err != nil {
		return strings.TrimRight(siteURL+"/"+htmlRoot, "/")
	}

	if htmlRoot != "" {
		ref, err := url.Parse(htmlRoot)
		if err == nil {
			base = base.ResolveReference(ref)
		}
	}

	return strings.TrimRight(base.String(), "/")
}

// ArchiveStreamURL is the absolute URL of a stream's topic list.
func ArchiveStreamURL(siteURL, htmlRoot, sanitizedStream string) string {
	return fmt.Sprintf("%s/stream/%s/index.html", ArchiveBase(siteURL, htmlRoot), sanitizedStream)
}

// ArchiveTopicURL is the absolute URL of a topic page.
func ArchiveTopicURL(siteURL, htmlRoot, sanitizedStream, sanitizedTopic string) string {
	return fmt.Sprintf("%s/stream/%s/topic/%s.html", ArchiveBase(siteURL, htmlRoot), sanitizedStream, sanitizedTopic)
}

// ArchiveMessageURL points at one message's anchor on its topic page.
func ArchiveMessageURL(siteURL, htmlRoot, sanitizedStream, sanitizedTopic string, msgID int64) string {
	return fmt.Sprintf("%s#%d", ArchiveTopicURL(siteURL, htmlRoot, sanitizedStream, sanitizedTopic), msgID)
}

// ZulipPostURL links to a message in the Zulip web app.
func ZulipPostURL(zulipURL string, streamID int64, stream, topic string, msgID int64) string {
	streamSlug := EncodeHashComponent(fmt.Sprintf("%d-%s", streamID, strings.ReplaceAll(stream, " ", "-")))

	return fmt.Sprintf("%s/#narrow/stream/%s/topic/%s/near/%d",
		strings.TrimRight(zulipURL, "/"), streamSlug, EncodeHashComponent(topic), msgID)
}

// EncodeHashComponent encodes s for the Zulip web app's #narrow fragment:
// encodeURIComponent, then "." becomes ".2E" and "%" becomes ".".
func EncodeHashComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		b := s[i]

		switch {
		case b == '.':
			sb.WriteString(".2E")
		case isUnreserved(b):
			sb.WriteByte(b)
		default:
			sb.WriteByte('.')
			sb.WriteByte(hex[b>>4])
			sb.WriteByte(hex[b&0x0f])
		}
	}

	return sb.String()
}

func isUnreserved(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}

	return strings.IndexByte("-_!~*'()", b) >= 0
}
