package assume

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)
	alphaNumRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
	lowerRegex    = regexp.MustCompile(`[a-z]`)
	upperRegex    = regexp.MustCompile(`[A-Z]`)
	symbolRegex   = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// lookupMX resolves the mail exchangers for a domain. Swappable so tests
// do not depend on live DNS.
var lookupMX = net.LookupMX

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	case []byte:
		i, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// Required rejects nil and the empty string. A boolean false is a value
// like any other and passes.
type Required struct {
	base
}

func NewRequired(col Column) *Required {
	return &Required{base{column: col, text: "%s is a required field"}}
}

func (r *Required) Check(v any) (bool, string) {
	if v == nil {
		return false, r.text
	}
	if s, ok := v.(string); ok && s == "" {
		return false, r.text
	}
	return true, ""
}

// Max bounds a value by the column's declared size: string-family columns
// compare character length, everything else compares magnitude.
type Max struct {
	base
	max int
}

func NewMax(col Column, max int) *Max {
	return &Max{base{column: col}, max}
}

func (r *Max) Check(v any) (bool, string) {
	if r.column.Is(FamilyString) {
		if len(toString(v)) <= r.max {
			return true, ""
		}
		return false, fmt.Sprintf("%%s may not be longer than %d characters", r.max)
	}
	if n, ok := toInt64(v); ok && n <= int64(r.max) {
		return true, ""
	}
	return false, fmt.Sprintf("%%s may not be greater than %d", r.max)
}

// Min enforces a lower bound on the string length of the value regardless
// of the column family.
type Min struct {
	base
	min int
}

func NewMin(col Column, min int) *Min {
	return &Min{base{column: col, text: fmt.Sprintf("%%s must be at least %d characters long", min)}, min}
}

func (r *Min) Check(v any) (bool, string) {
	if len(toString(v)) >= r.min {
		return true, ""
	}
	return false, r.text
}

// Number validates an integer column: the column must not be
// database-generated, unsigned columns reject negatives, and the value may
// not exceed the widest number the declared digit count can hold.
type Number struct {
	base
	digits  int
	ceiling int64
}

func NewNumber(col Column, digits int) *Number {
	if digits <= 0 || digits > 18 {
		digits = 18
	}
	ceil, _ := strconv.ParseInt(strings.Repeat("9", digits), 10, 64)
	return &Number{base{column: col}, digits, ceil}
}

func (r *Number) Check(v any) (bool, string) {
	if r.column.Automatic() {
		return false, "%s is automatically generated and may not be assigned"
	}
	n, ok := toInt64(v)
	if !ok {
		return false, "%s must be a whole number"
	}
	if r.column.Unsigned() && n < 0 {
		return false, "%s may not be negative"
	}
	if n > r.ceiling {
		return false, fmt.Sprintf("%%s may not be greater than %d", r.ceiling)
	}
	return true, ""
}

func (r *Number) Modify(v any) any {
	if n, ok := toInt64(v); ok {
		return int(n)
	}
	return v
}

// Binary treats the column as a boolean flag.
type Binary struct {
	base
}

func NewBinary(col Column) *Binary {
	return &Binary{base{column: col, text: "%s must contain a true/false value"}}
}

func (r *Binary) Check(v any) (bool, string) {
	if _, ok := v.(bool); ok {
		return true, ""
	}
	return false, r.text
}

func (r *Binary) Modify(v any) any {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != "" && b != "0"
	default:
		if n, ok := toInt64(v); ok {
			return n != 0
		}
		return true
	}
}

// Options restricts the value to a fixed literal set; membership is a
// case-sensitive exact match.
type Options struct {
	base
	allowed []string
}

func NewOptions(col Column, allowed []string) *Options {
	return &Options{base{column: col, text: "%s may only be set to " + joinOr(allowed)}, allowed}
}

func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

func (r *Options) Check(v any) (bool, string) {
	s := toString(v)
	for _, a := range r.allowed {
		if s == a {
			return true, ""
		}
	}
	return false, r.text
}

// Allowed returns the literal set the rule accepts.
func (r *Options) Allowed() []string { return r.allowed }

// Email validates an address in steps: length, @ placement, format, and
// finally an MX lookup on the domain.
type Email struct {
	base
}

func NewEmail(col Column) *Email {
	return &Email{base{column: col}}
}

func (r *Email) Check(v any) (bool, string) {
	s := toString(v)
	if len(s) < 9 || len(s) > 255 {
		return false, "%s must be between 9 and 255 characters long"
	}
	at := strings.Index(s, "@")
	if at < 1 {
		return false, "%s must contain an @ symbol"
	}
	if !emailRegex.MatchString(strings.ToLower(s)) {
		return false, "%s is not a valid email address"
	}
	host := s[strings.LastIndex(s, "@")+1:]
	if mx, err := lookupMX(host); err != nil || len(mx) == 0 {
		return false, "%s does not belong to a valid domain"
	}
	return true, ""
}

// Username accepts alphanumeric handles of a sensible length. An
// over-long handle reports its message but still passes.
type Username struct {
	base
}

func NewUsername(col Column) *Username {
	return &Username{base{column: col}}
}

func (r *Username) Check(v any) (bool, string) {
	s := toString(v)
	if !alphaNumRegex.MatchString(s) {
		return false, "%s may only contain letters and numbers"
	}
	if len(s) < 3 {
		return false, "%s must be at least 3 characters long"
	}
	if len(s) > 32 {
		return true, "%s may not be longer than 32 characters"
	}
	return true, ""
}

// Password requires a minimum length and a mix of character classes. A
// missing symbol lowers the strength score but does not fail the check.
type Password struct {
	base
}

func NewPassword(col Column) *Password {
	return &Password{base{column: col}}
}

func (r *Password) Check(v any) (bool, string) {
	s := toString(v)
	if len(s) < 6 {
		return false, "%s must be at least 6 characters long"
	}
	if !digitRegex.MatchString(s) {
		return false, "%s must contain at least one number"
	}
	if !lowerRegex.MatchString(s) {
		return false, "%s must contain at least one lowercase letter"
	}
	if !upperRegex.MatchString(s) {
		return false, "%s must contain at least one uppercase letter"
	}
	return true, ""
}

// Strength scores a candidate from 100 down, dropping 20 for each missing
// character class.
func (r *Password) Strength(v any) int {
	s := toString(v)
	strength := 100
	for _, re := range []*regexp.Regexp{digitRegex, lowerRegex, upperRegex, symbolRegex} {
		if !re.MatchString(s) {
			strength -= 20
		}
	}
	return strength
}

// Ip accepts public IPv4 or IPv6 addresses only.
type Ip struct {
	base
}

func NewIp(col Column) *Ip {
	return &Ip{base{column: col, text: "%s is not a valid IPv4 or IPv6 address outside of private and reserved ranges"}}
}

func (r *Ip) Check(v any) (bool, string) {
	ip := net.ParseIP(toString(v))
	if ip == nil {
		return false, r.text
	}
	if ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return false, r.text
	}
	return true, ""
}

// Uri is a placeholder rule that accepts everything.
type Uri struct {
	base
}

func NewUri(col Column) *Uri {
	return &Uri{base{column: col, text: "%s is not a valid URI"}}
}

func (r *Uri) Check(v any) (bool, string) { return true, "" }
