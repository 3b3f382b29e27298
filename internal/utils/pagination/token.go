package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Tokens travel in query strings, so the URL-safe alphabet without padding is used.
var tokenEncoding = base64.RawURLEncoding

// EncodeToken creates an opaque token from the sort key (a date) and the tie-breaking ID
// of the last item on a page.
func EncodeToken(sortDate time.Time, id string) string {
	tokenStr := fmt.Sprintf("%s|%s", sortDate.UTC().Format(timeFormat), id)
	return tokenEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (time.Time, string, error) {
	decodedBytes, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}

	sortDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}

	return sortDate, parts[1], nil
}
