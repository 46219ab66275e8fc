package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Duration is time.Duration with day unit in text form
type Duration time.Duration

// String returns "-" for zero, otherwise
// days followed by regular duration of the remainder, e.g. 2d3h0m0s
func (d Duration) String() string {
	v := time.Duration(d)
	if v == 0 {
		return "-"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	if v < day {
		return sign + v.String()
	}
	s := fmt.Sprintf("%v%vd", sign, int64(v/day))
	if rest := v % day; rest != 0 {
		s += rest.String()
	}
	return s
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ParseDuration accepts either "0", "-",
// or time.ParseDuration format with optional leading days, e.g. 1d12h
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "-" {
		return 0, nil
	}

	str, sign := s, time.Duration(1)
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	v := time.Duration(0)
	if days, rest, ok := strings.Cut(s, "d"); ok {
		n, err := strconv.ParseUint(days, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", str)
		}
		v, s = time.Duration(n)*day, rest
		if s == "" {
			return Duration(sign * v), nil
		}
	}

	rest, err := time.ParseDuration(s)
	if err != nil || rest < 0 {
		return 0, fmt.Errorf("invalid duration %q", str)
	}
	return Duration(sign * (v + rest)), nil
}
