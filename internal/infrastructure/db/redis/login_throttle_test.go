package redis

import (
	"testing"
	"time"
)

func TestNewLoginThrottle_Defaults(t *testing.T) {
	th := NewLoginThrottle(nil, 0, 0)
	if th.max != defaultMaxAttempts || th.window != defaultWindow {
		t.Fatalf("expected defaults, got max=%d window=%s", th.max, th.window)
	}

	th = NewLoginThrottle(nil, 3, time.Minute)
	if th.max != 3 || th.window != time.Minute {
		t.Fatalf("explicit values ignored: max=%d window=%s", th.max, th.window)
	}
}

func TestLoginThrottle_Key(t *testing.T) {
	th := NewLoginThrottle(nil, 1, time.Second)
	if got := th.key("a@x.com"); got != "login:a@x.com" {
		t.Fatalf("unexpected key %q", got)
	}
}
