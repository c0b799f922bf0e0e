package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseSizeToMB converts strings like "128G", "500M", "1024" into Megabytes.
// Default unit is MB if no suffix is provided.
func ParseSizeToMB(sizeStr string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(sizeStr))

	re := regexp.MustCompile(`^(\d+)(G|GB|M|MB|T|TB)?$`)
	matches := re.FindStringSubmatch(s)

	if len(matches) < 2 {
		return 0, fmt.Errorf("invalid size format: %s (expected '128G', '500M', etc.)", sizeStr)
	}

	val, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", matches[1])
	}

	switch matches[2] {
	case "G", "GB":
		return val * 1024, nil
	case "T", "TB":
		return val * 1048576, nil
	case "M", "MB", "":
		return val, nil
	default:
		return 0, fmt.Errorf("unsupported unit: %s", matches[2])
	}
}

// ParseDuration parses a walltime string supporting multiple formats:
//   - Go duration: "2h", "30m", "1h30m"
//   - Scheduler D-HH:MM:SS format: "1-00:00:00", "2-12:00:00"
//   - HH:MM:SS format: "24:00:00", "02:30:00"
//   - HH:MM format: "2:30" (hours:minutes)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	// D-HH:MM:SS (SLURM day prefix)
	var days int64
	if idx := strings.Index(s, "-"); idx > 0 {
		parsed, err := strconv.ParseInt(s[:idx], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid days: %s", s[:idx])
		}
		days = parsed
		s = s[idx+1:]
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		nums := make([]int64, len(parts))
		for i, p := range parts {
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid time component: %s", p)
			}
			nums[i] = n
		}
		var d time.Duration
		switch len(parts) {
		case 2:
			// HH:MM
			d = time.Duration(nums[0])*time.Hour + time.Duration(nums[1])*time.Minute
		case 3:
			d = time.Duration(nums[0])*time.Hour +
				time.Duration(nums[1])*time.Minute +
				time.Duration(nums[2])*time.Second
		default:
			return 0, fmt.Errorf("invalid time format: %s (use D-HH:MM:SS, HH:MM:SS or HH:MM)", s)
		}
		return time.Duration(days)*24*time.Hour + d, nil
	}

	if days > 0 {
		return 0, fmt.Errorf("invalid time format: day prefix requires HH:MM:SS remainder")
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s (use '2h', '30m', '1-00:00:00', or '24:00:00')", s)
	}
	return dur, nil
}

// ShellQuote quotes a string for safe inclusion in a POSIX shell command.
// Uses single quotes, closing and reopening around embedded single quotes.
// Arguments pass through the shell byte-for-byte, preserving order and content.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if shellSafeRe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var shellSafeRe = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_-]+$`)

// ShellQuoteAll quotes every argument and joins them with spaces.
func ShellQuoteAll(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = ShellQuote(a)
	}
	return strings.Join(quoted, " ")
}
