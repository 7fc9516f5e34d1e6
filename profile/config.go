package profile

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/wippyai/pdscore/errors"
)

// Format is an interchange format: how a leaf's bytes are represented.
type Format uint8

const (
	Binary Format = iota
	ASCII
)

func (f Format) String() string {
	if f == ASCII {
		return "ASCII"
	}
	return "BINARY"
}

// ParseFormat accepts BINARY or ASCII in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BINARY", "":
		return Binary, nil
	case "ASCII":
		return ASCII, nil
	}
	return Binary, errors.InvalidArgument(errors.PhaseProfile, "unknown interchange format %q", s)
}

// Alignment controls padding inserted into binary destinations.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignEven           // multi-byte items start on even offsets
	AlignRISC           // items start on multiples of their size, up to 8
)

var alignmentNames = [...]string{
	AlignNone: "none",
	AlignEven: "even",
	AlignRISC: "risc",
}

func (a Alignment) String() string {
	if int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return "unknown"
}

// ParseAlignment resolves an alignment policy by name.
func ParseAlignment(s string) (Alignment, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AlignNone, nil
	}
	for i, n := range alignmentNames {
		if n == s {
			return Alignment(i), nil
		}
	}
	return AlignNone, errors.InvalidArgument(errors.PhaseProfile, "unknown alignment %q", s)
}

// Config is the conversion profile threaded through every build and stream
// call. It is a value: With* methods return modified copies.
type Config struct {
	ASCIITo          Format // destination format for ASCII-sourced data
	BinaryTo         Format // destination format for binary-sourced data
	Align            Alignment
	Platform         Platform
	CheckASCIIWrites bool // report values that overflow their ASCII field
}

// DefaultConfig converts everything to native binary on little-endian IEEE
// without alignment padding.
func DefaultConfig() Config {
	return Config{
		ASCIITo:  Binary,
		BinaryTo: Binary,
		Align:    AlignNone,
		Platform: LSBIEEE,
	}
}

// WithPlatform returns a copy targeting platform p.
func (c Config) WithPlatform(p Platform) Config {
	c.Platform = p
	return c
}

// WithASCIIOutput returns a copy writing every leaf as ASCII.
func (c Config) WithASCIIOutput() Config {
	c.ASCIITo = ASCII
	c.BinaryTo = ASCII
	return c
}

// WithFormats returns a copy with explicit destination formats.
func (c Config) WithFormats(fromASCII, fromBinary Format) Config {
	c.ASCIITo = fromASCII
	c.BinaryTo = fromBinary
	return c
}

// WithAlignment returns a copy using alignment policy a.
func (c Config) WithAlignment(a Alignment) Config {
	c.Align = a
	return c
}

// WithASCIIChecks returns a copy that reports ASCII field overflows.
func (c Config) WithASCIIChecks(on bool) Config {
	c.CheckASCIIWrites = on
	return c
}

// Destination returns the destination format for data whose source format is src.
func (c Config) Destination(src Format) Format {
	if src == ASCII {
		return c.ASCIITo
	}
	return c.BinaryTo
}

// Registry returns the type registry of the configured platform.
func (c Config) Registry() Registry {
	return NewRegistry(c.Platform)
}

type configDoc struct {
	Platform         string `yaml:"platform"`
	ASCIITo          string `yaml:"ascii_to"`
	BinaryTo         string `yaml:"binary_to"`
	Alignment        string `yaml:"alignment"`
	CheckASCIIWrites bool   `yaml:"check_ascii_writes"`
}

// ParseConfig reads a Config from YAML. Omitted fields keep DefaultConfig values.
//
//	platform: msb-ieee
//	ascii_to: binary
//	binary_to: ascii
//	alignment: risc
//	check_ascii_writes: true
func ParseConfig(data []byte) (Config, error) {
	var doc configDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, errors.Wrap(errors.PhaseProfile, errors.KindInvalidArgument, err, "parse profile config")
	}

	cfg := DefaultConfig()
	var err error
	if doc.Platform != "" {
		if cfg.Platform, err = ParsePlatform(doc.Platform); err != nil {
			return Config{}, err
		}
	}
	if cfg.ASCIITo, err = ParseFormat(doc.ASCIITo); err != nil {
		return Config{}, err
	}
	if cfg.BinaryTo, err = ParseFormat(doc.BinaryTo); err != nil {
		return Config{}, err
	}
	if cfg.Align, err = ParseAlignment(doc.Alignment); err != nil {
		return Config{}, err
	}
	cfg.CheckASCIIWrites = doc.CheckASCIIWrites
	return cfg, nil
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseProfile, errors.KindInvalidArgument, err, "read "+path)
	}
	return ParseConfig(data)
}
