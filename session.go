package bridgelog

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns an identifier of the form session_<unix millis>_<9 random chars>.
func NewSessionID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), random[:9])
}

// DefaultUserAgent identifies this client when no user agent is configured.
func DefaultUserAgent() string {
	return fmt.Sprintf("bridgelog (%s/%s; %s)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}
