package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bpwallet/bpstd/derive"
)

var (
	// ErrMalformedDescriptor is returned when a descriptor string doesn't
	// have the "name(KEY)" shape of a supported template.
	ErrMalformedDescriptor = errors.New("malformed descriptor")

	// ErrUnsupportedTemplate is returned for well formed descriptors of a
	// script template that is not supported.
	ErrUnsupportedTemplate = errors.New("unsupported script template")
)

// ParseStd parses a "wpkh(KEY)" or "tr(KEY)" descriptor, where KEY is a
// derivable key expression such as "[73c5da0a/84h/0h/0h]xpub.../<0;1>/*". A
// trailing "#checksum" is accepted but not verified.
func ParseStd(s string) (DescriptorStd[*derive.XpubDerivable], error) {
	var std DescriptorStd[*derive.XpubDerivable]

	body, checksum, hasChecksum := strings.Cut(strings.TrimSpace(s), "#")
	if hasChecksum {
		log.Tracef("Ignoring checksum %q of descriptor", checksum)
	}

	name, rest, ok := strings.Cut(body, "(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return std, fmt.Errorf("%w: expected name(KEY), got %q",
			ErrMalformedDescriptor, body)
	}
	keyStr := strings.TrimSuffix(rest, ")")

	var kind StdKind
	switch name {
	case StdKindWpkh.String():
		kind = StdKindWpkh

	case StdKindTrKey.String():
		kind = StdKindTrKey

	default:
		return std, fmt.Errorf("%w: %q", ErrUnsupportedTemplate, name)
	}

	key, err := derive.ParseXpubDerivable(keyStr)
	if err != nil {
		return std, fmt.Errorf("%w: %v key: %w", ErrMalformedDescriptor,
			kind, err)
	}

	log.Debugf("Parsed %v descriptor for keychains %v", kind,
		key.Keychains())

	if kind == StdKindWpkh {
		return NewStdWpkh(NewWpkh(key)), nil
	}

	return NewStdTrKey(NewTrKey(key)), nil
}

// MarshalText implements encoding.TextMarshaler.
func (d DescriptorStd[S]) MarshalText() ([]byte, error) {
	if d.kind != StdKindWpkh && d.kind != StdKindTrKey {
		return nil, fmt.Errorf("%w: no template", ErrMalformedDescriptor)
	}

	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only descriptors over
// the standard derivable key have a text form.
func (d *DescriptorStd[S]) UnmarshalText(text []byte) error {
	parsed, err := ParseStd(string(text))
	if err != nil {
		return err
	}

	std, ok := any(parsed).(DescriptorStd[S])
	if !ok {
		return fmt.Errorf("%w: text form can't be decoded into %T",
			ErrUnsupportedTemplate, d)
	}

	*d = std

	return nil
}
