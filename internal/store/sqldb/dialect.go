package sqldb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect captures the differences between the SQL backends.
type Dialect struct {
	// Name is reported by Store.Driver.
	Name string
	// Numbered placeholders ($1, $2, ...) instead of "?".
	Numbered bool
	// EncodeTime converts a timestamp to a bind value.
	EncodeTime func(time.Time) any
	// IsUniqueViolation reports whether err is a primary or unique key conflict.
	IsUniqueViolation func(error) bool
}

// Rebind rewrites "?" placeholders for the dialect.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.EncodeTime(*t)
}

// timeValue scans TEXT (RFC 3339) or native timestamp columns.
type timeValue struct {
	t     time.Time
	valid bool
}

func (v *timeValue) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		v.valid = false
		return nil
	case time.Time:
		v.t, v.valid = s.UTC(), true
		return nil
	case string:
		return v.parse(s)
	case []byte:
		return v.parse(string(s))
	default:
		return fmt.Errorf("scan time: unsupported type %T", src)
	}
}

func (v *timeValue) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("scan time: %w", err)
	}
	v.t, v.valid = t.UTC(), true
	return nil
}

func (v timeValue) ptr() *time.Time {
	if !v.valid {
		return nil
	}
	t := v.t
	return &t
}

// FormatTime is the TEXT encoding used by backends without a native
// timestamp type.
func FormatTime(t time.Time) any {
	return t.UTC().Format(time.RFC3339Nano)
}

// NativeTime passes timestamps through to the driver.
func NativeTime(t time.Time) any {
	return t.UTC()
}
