package spf

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// SPF record parsing errors.
var (
	ErrRecordSyntax     = errors.New("spf: malformed SPF record")
	ErrInvalidMechanism = errors.New("spf: invalid mechanism")
)

// parser is the internal state for parsing SPF records.
type parser struct {
	s     string // Original string
	lower string // Lower-cased string for case-insensitive matching
	o     int    // Current offset
}

// parseError is a recoverable parsing error.
type parseError string

func (e parseError) Error() string {
	return string(e)
}

// toLower lower-cases ASCII A-Z without affecting other bytes.
func toLower(s string) string {
	r := []byte(s)
	for i, c := range r {
		if c >= 'A' && c <= 'Z' {
			r[i] = c + 0x20
		}
	}
	return string(r)
}

// ParseRecord parses an SPF DNS TXT record.
// Returns the parsed record, whether the text looks like an SPF record
// (starts with "v=spf1"), and any parsing error.
func ParseRecord(s string) (r *Record, isSPF bool, err error) {
	p := parser{s: s, lower: toLower(s)}

	r = &Record{
		RawText: s,
		Version: "spf1",
	}

	defer func() {
		x := recover()
		if x == nil {
			return
		}
		if perr, ok := x.(parseError); ok {
			r, err = nil, fmt.Errorf("%w: %s", ErrRecordSyntax, perr)
			return
		}
		panic(x)
	}()

	// Must start with "v=spf1"
	if !p.take("v=spf1") {
		return nil, false, nil
	}
	// A bare "v=spf1" is a valid record with an empty policy.
	isSPF = p.empty()

	for !p.empty() {
		// Require space between terms
		if !p.take(" ") {
			p.xerrorf("expected space")
		}
		isSPF = true // Has at least v=spf1 and a space

		// Skip multiple spaces
		for p.take(" ") {
		}

		if p.empty() {
			break
		}

		qualifier := p.takelist("+", "-", "?", "~")
		mechanism := p.takelist("all", "include:", "a", "mx", "ptr", "ip4:", "ip6:", "exists:")

		if qualifier != "" && mechanism == "" {
			p.xerrorf("expected mechanism after qualifier")
		}

		if mechanism == "" {
			// Modifier
			modifier := p.takelist("redirect=", "exp=")
			if modifier == "" {
				// Unknown modifier: name=value
				name := p.xtakefn1(func(c rune, i int) bool {
					alpha := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
					return alpha || i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.')
				})
				if !p.take("=") {
					p.xerrorf("expected '=' after modifier name")
				}
				v := p.xmacroString(true)
				r.Other = append(r.Other, Modifier{name, v})
				continue
			}

			v := p.xdomainSpec(true)
			switch strings.TrimSuffix(modifier, "=") {
			case "redirect":
				if r.Redirect != "" {
					p.xerrorf("duplicate redirect modifier")
				}
				r.Redirect = v
			case "exp":
				if r.Explanation != "" {
					p.xerrorf("duplicate exp modifier")
				}
				r.Explanation = v
			}
			continue
		}

		d := Directive{
			Qualifier: Qualifier(qualifier),
			Mechanism: strings.TrimSuffix(mechanism, ":"),
		}

		switch d.Mechanism {
		case "all":
			// No parameters

		case "include", "exists":
			d.DomainSpec = p.xdomainSpec(false)

		case "a", "mx":
			if p.take(":") {
				d.DomainSpec = p.xdomainSpec(false)
			}
			if p.take("/") {
				if !p.take("/") {
					num, _ := p.xnumber()
					if num > 32 {
						p.xerrorf("invalid IPv4 CIDR length %d", num)
					}
					d.IP4CIDRLen = &num
					if !p.take("//") {
						break
					}
				}
				num, _ := p.xnumber()
				if num > 128 {
					p.xerrorf("invalid IPv6 CIDR length %d", num)
				}
				d.IP6CIDRLen = &num
			}

		case "ptr":
			if p.take(":") {
				d.DomainSpec = p.xdomainSpec(false)
			}

		case "ip4":
			d.IP = p.xip4address()
			if p.take("/") {
				num, _ := p.xnumber()
				if num > 32 {
					p.xerrorf("invalid IPv4 CIDR length %d", num)
				}
				d.IP4CIDRLen = &num
			}

		case "ip6":
			d.IP = p.xip6address()
			if p.take("/") {
				num, _ := p.xnumber()
				if num > 128 {
					p.xerrorf("invalid IPv6 CIDR length %d", num)
				}
				d.IP6CIDRLen = &num
			}

		default:
			return nil, true, fmt.Errorf("%w: unknown mechanism %q", ErrInvalidMechanism, d.Mechanism)
		}

		r.Directives = append(r.Directives, d)
	}

	return r, true, nil
}

func (p *parser) xerrorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !p.empty() {
		msg += fmt.Sprintf(" (remaining: %q)", p.s[p.o:])
	}
	panic(parseError(msg))
}

func (p *parser) empty() bool {
	return p.o >= len(p.s)
}

func (p *parser) peekchar() byte {
	return p.s[p.o]
}

func (p *parser) take(s string) bool {
	if strings.HasPrefix(p.lower[p.o:], s) {
		p.o += len(s)
		return true
	}
	return false
}

func (p *parser) xtake(s string) string {
	if !p.take(s) {
		p.xerrorf("expected %q", s)
	}
	return s
}

func (p *parser) takelist(l ...string) string {
	for _, w := range l {
		if strings.HasPrefix(p.lower[p.o:], w) {
			p.o += len(w)
			return w
		}
	}
	return ""
}

func (p *parser) xtakelist(l ...string) string {
	w := p.takelist(l...)
	if w == "" {
		p.xerrorf("no match for %v", l)
	}
	return w
}

// xtakefn1 takes one or more characters matching fn.
func (p *parser) xtakefn1(fn func(rune, int) bool) string {
	r := ""
	for i, c := range p.s[p.o:] {
		if !fn(c, i) {
			break
		}
		r += string(c)
	}
	if r == "" {
		p.xerrorf("need at least 1 character")
	}
	p.o += len(r)
	return r
}

// digits parses zero or more digits.
func (p *parser) digits() string {
	r := ""
	for !p.empty() {
		b := p.peekchar()
		if b >= '0' && b <= '9' {
			r += string(b)
			p.o++
		} else {
			break
		}
	}
	return r
}

func (p *parser) xnumber() (int, string) {
	s := p.digits()
	if s == "" {
		p.xerrorf("expected number")
	}
	if s == "0" {
		return 0, s
	}
	if strings.HasPrefix(s, "0") {
		p.xerrorf("invalid leading zero in number")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.xerrorf("parsing number %q: %s", s, err)
	}
	return v, s
}

// xdomainSpec parses a domain-spec.
// includingSlash should be false when the following term may carry a CIDR
// suffix, to avoid consuming the /.
func (p *parser) xdomainSpec(includingSlash bool) string {
	s := p.xmacroString(includingSlash)

	// Domain ends with a macro-expand or a valid toplabel.
	for _, suf := range []string{"%%", "%_", "%-", "}"} {
		if strings.HasSuffix(s, suf) {
			return s
		}
	}

	tl := strings.Split(strings.TrimSuffix(s, "."), ".")
	if len(tl) == 0 {
		return s
	}
	t := tl[len(tl)-1]
	if t == "" {
		p.xerrorf("invalid empty toplabel")
	}

	nums := 0
	for i, c := range t {
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			// OK
		case c >= '0' && c <= '9':
			nums++
		case c == '-':
			if i == 0 {
				p.xerrorf("toplabel cannot start with dash")
			}
			if i == len(t)-1 {
				p.xerrorf("toplabel cannot end with dash")
			}
		default:
			p.xerrorf("invalid character in toplabel")
		}
	}
	if nums == len(t) {
		p.xerrorf("toplabel cannot be all digits")
	}

	return s
}

// xmacroString parses a macro-string.
func (p *parser) xmacroString(includingSlash bool) string {
	r := ""
	for !p.empty() {
		w := p.takelist("%{", "%%", "%_", "%-")
		if w == "" {
			// macro-literal
			if !p.empty() {
				b := p.peekchar()
				if b > ' ' && b < 0x7f && b != '%' && (includingSlash || b != '/') {
					r += string(b)
					p.o++
					continue
				}
			}
			break
		}
		r += w
		if w != "%{" {
			continue
		}

		// Macro letter
		r += p.xtakelist("s", "l", "o", "d", "i", "p", "h", "c", "r", "t", "v")

		// Optional transformer digits
		digits := p.digits()
		if digits != "" {
			v, err := strconv.Atoi(digits)
			if err != nil {
				p.xerrorf("invalid digits: %v", err)
			}
			if v == 0 {
				p.xerrorf("zero labels not allowed")
			}
		}
		r += digits

		// Optional reverse
		if p.take("r") {
			r += "r"
		}

		// Optional delimiters
		for {
			delimiter := p.takelist(".", "-", "+", ",", "/", "_", "=")
			if delimiter == "" {
				break
			}
			r += delimiter
		}

		r += p.xtake("}")
	}
	return r
}

func (p *parser) xip4address() net.IP {
	ip4num := func() byte {
		v, _ := p.xnumber()
		if v > 255 {
			p.xerrorf("invalid IPv4 octet %d", v)
		}
		return byte(v)
	}

	a := ip4num()
	p.xtake(".")
	b := ip4num()
	p.xtake(".")
	c := ip4num()
	p.xtake(".")
	d := ip4num()

	return net.IPv4(a, b, c, d)
}

func (p *parser) xip6address() net.IP {
	s := p.xtakefn1(func(c rune, i int) bool {
		return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' || c == ':' || c == '.'
	})
	ip := net.ParseIP(s)
	if ip == nil {
		p.xerrorf("invalid IPv6 address %q", s)
	}
	return ip
}
