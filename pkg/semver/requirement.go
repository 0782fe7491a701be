package semver

import (
	"fmt"
	"strconv"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"

	"github.com/matzehuels/towline/pkg/errors"
)

// SetRequirement slides a dependency version requirement forward to match a
// new concrete version.
//
// Each comparator keeps its operator family (wildcard, exact, caret, tilde)
// and its precision: fields the original left unset stay unset, so a
// requirement pinned only to a major version stays pinned only to a major
// version. Range operators (>, >=, <, <=) cannot be slid forward and fail
// with UNSUPPORTED_REQUIREMENT.
//
// The second return value is false when re-rendering the updated requirement
// produces the original text, i.e. no change is needed. Applying
// SetRequirement twice with the same version therefore reports no change the
// second time.
func SetRequirement(req string, version *mmsemver.Version) (string, bool, error) {
	comparators, err := parseRequirement(req)
	if err != nil {
		return "", false, err
	}
	if len(comparators) == 0 {
		// A bare "*" matches everything; nothing to update.
		return "", false, nil
	}

	for i := range comparators {
		comparators[i].assign(version)
	}

	parts := make([]string, len(comparators))
	for i, c := range comparators {
		parts[i] = c.render()
	}
	updated := strings.Join(parts, ", ")
	if updated == strings.TrimSpace(req) {
		return "", false, nil
	}
	return updated, true, nil
}

// RequirementMatches reports whether the requirement expression admits the
// given version.
func RequirementMatches(req string, version *mmsemver.Version) (bool, error) {
	c, err := mmsemver.NewConstraint(req)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeUnsupportedRequirement, err, "invalid requirement %q", req)
	}
	return c.Check(version), nil
}

// comparator is one element of a comma-separated requirement expression,
// retaining enough of the source text to re-render it in place.
type comparator struct {
	// op is the exact operator prefix from the source, including any
	// whitespace between operator and version ("^", "~", "= ", "").
	op string

	major uint64
	minor *uint64
	patch *uint64
	pre   string

	// wildcard marks "1.*" (position 1) or "1.0.*" / "1.*.*" (position 2).
	// Zero means no wildcard.
	wildcard int
}

// assign projects the operator-relevant fields of version onto the
// comparator, leaving unset fields unset.
func (c *comparator) assign(v *mmsemver.Version) {
	switch c.wildcard {
	case 1: // 1.*
		c.major = v.Major()
	case 2: // 1.0.* or 1.*.*
		c.major = v.Major()
		if c.minor != nil {
			m := v.Minor()
			c.minor = &m
		}
	default:
		c.major = v.Major()
		if c.minor != nil {
			m := v.Minor()
			c.minor = &m
		}
		if c.patch != nil {
			p := v.Patch()
			c.patch = &p
		}
		c.pre = v.Prerelease()
	}
}

func (c *comparator) render() string {
	switch c.wildcard {
	case 1:
		return fmt.Sprintf("%d.*", c.major)
	case 2:
		if c.minor != nil {
			return fmt.Sprintf("%d.%d.*", c.major, *c.minor)
		}
		return fmt.Sprintf("%d.*.*", c.major)
	}

	var b strings.Builder
	b.WriteString(c.op)
	fmt.Fprintf(&b, "%d", c.major)
	if c.minor != nil {
		fmt.Fprintf(&b, ".%d", *c.minor)
	}
	if c.patch != nil {
		fmt.Fprintf(&b, ".%d", *c.patch)
	}
	if c.pre != "" {
		b.WriteByte('-')
		b.WriteString(c.pre)
	}
	return b.String()
}

// parseRequirement splits a requirement expression into comparators.
// An empty result means the requirement matches everything ("*" or blank).
func parseRequirement(req string) ([]comparator, error) {
	var comparators []comparator
	for _, part := range strings.Split(req, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" {
			continue
		}
		c, err := parseComparator(part)
		if err != nil {
			return nil, err
		}
		comparators = append(comparators, c)
	}
	return comparators, nil
}

func parseComparator(text string) (comparator, error) {
	rest := text
	var op string
	switch {
	case strings.HasPrefix(rest, ">="), strings.HasPrefix(rest, "<="),
		strings.HasPrefix(rest, ">"), strings.HasPrefix(rest, "<"):
		return comparator{}, errors.New(errors.ErrCodeUnsupportedRequirement,
			"cannot update requirement %q: range operators are not supported", text)
	case strings.HasPrefix(rest, "^"), strings.HasPrefix(rest, "~"), strings.HasPrefix(rest, "="):
		cut := 1
		for cut < len(rest) && rest[cut] == ' ' {
			cut++
		}
		op, rest = rest[:cut], rest[cut:]
	}

	c := comparator{op: op}

	versionPart := rest
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		versionPart, c.pre = rest[:i], rest[i+1:]
	}
	if strings.ContainsAny(versionPart, "+") {
		return c, errors.New(errors.ErrCodeUnsupportedRequirement,
			"requirement %q must not carry build metadata", text)
	}

	fields := strings.Split(versionPart, ".")
	if len(fields) > 3 {
		return c, errors.New(errors.ErrCodeUnsupportedRequirement, "invalid requirement %q", text)
	}

	for pos, field := range fields {
		if isWildcardField(field) {
			if op != "" {
				return c, errors.New(errors.ErrCodeUnsupportedRequirement,
					"invalid requirement %q: wildcard after operator", text)
			}
			// "1.*" stops here; "1.*.*" and "1.0.*" mark a patch wildcard.
			if pos == 1 && len(fields) == 2 {
				c.wildcard = 1
			} else {
				c.wildcard = 2
				if pos == 1 {
					c.minor = nil
				}
			}
			continue
		}
		n, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return c, errors.New(errors.ErrCodeUnsupportedRequirement, "invalid requirement %q", text)
		}
		switch pos {
		case 0:
			c.major = n
		case 1:
			c.minor = &n
		case 2:
			c.patch = &n
		}
	}

	return c, nil
}

func isWildcardField(f string) bool {
	return f == "*" || f == "x" || f == "X"
}
