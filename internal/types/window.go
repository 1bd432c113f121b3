package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultWindow = time.Hour
	MinWindow     = time.Minute
	MaxWindow     = 7 * 24 * time.Hour
)

// ParseWindow reads a look-back window such as "5m", "12h" or "7d". Empty
// means DefaultWindow. Values outside [MinWindow, MaxWindow] are rejected.
func ParseWindow(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWindow, nil
	}

	var (
		d   time.Duration
		err error
	)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		var n int
		n, err = strconv.Atoi(days)
		d = time.Duration(n) * 24 * time.Hour
	} else {
		d, err = time.ParseDuration(s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid window %q (examples: 5m, 4h, 7d)", s)
	}
	if d < MinWindow || d > MaxWindow {
		return 0, fmt.Errorf("window %s out of range (%s to 7d)", s, MinWindow)
	}
	return d, nil
}
