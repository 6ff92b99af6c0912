package content

import (
	"fmt"
	"strings"
)

// Key identifies one chapter of content. Its encoded form is stable so it can
// double as the session and cache key.
type Key struct {
	Board   string // e.g. "cbse"
	Class   int    // e.g. 12
	Stream  string // optional, e.g. "sci"
	Subject string // e.g. "physics"
	Chapter int    // 1-based
}

// String encodes the key as board-class[stream]-subject-chNN, lowercased.
func (k Key) String() string {
	class := fmt.Sprintf("%d", k.Class)
	if k.Stream != "" {
		class += strings.ToLower(k.Stream)
	}
	return strings.ToLower(fmt.Sprintf("%s-%s-%s-ch%02d", k.Board, class, k.Subject, k.Chapter))
}
