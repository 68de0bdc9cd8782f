package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CandidateSpec is a configured srcset entry. It either lists Manipulations or is
// itself a single manipulation via Method and Arguments.
type CandidateSpec struct {
	Method        string         `yaml:"method,omitempty" json:"method,omitempty"`
	Arguments     []any          `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Manipulations []Manipulation `yaml:"manipulations,omitempty" json:"manipulations,omitempty"`
	Descriptor    string         `yaml:"descriptor,omitempty" json:"descriptor,omitempty"`
}

func (c CandidateSpec) CandidateDescriptor() (CandidateDescriptor, error) {
	manipulations := c.Manipulations
	if len(manipulations) == 0 {
		if c.Method == "" {
			return CandidateDescriptor{}, fmt.Errorf("%w: candidate has neither method nor manipulations",
				ErrInvalidSourceConfig)
		}
		manipulations = []Manipulation{{Method: c.Method, Arguments: c.Arguments}}
	}

	for _, m := range manipulations {
		if m.Method == "" {
			return CandidateDescriptor{}, fmt.Errorf("%w: manipulation without method", ErrInvalidSourceConfig)
		}
	}

	return CandidateDescriptor{Manipulations: manipulations, Descriptor: c.Descriptor}, nil
}

// SourceSpec configures one <source> of a picture. Key is the key the group was
// configured under; a numeric or empty key is positional and Media is used instead.
type SourceSpec struct {
	Key        string          `yaml:"-" json:"-"`
	Media      string          `yaml:"media,omitempty" json:"media,omitempty"`
	Candidates []CandidateSpec `yaml:"candidates" json:"candidates"`
}

func (s SourceSpec) ResolveMedia() string {
	if s.Key == "" {
		return s.Media
	}
	if _, err := strconv.Atoi(s.Key); err == nil {
		return s.Media
	}
	return s.Key
}

type Style struct {
	Name    string          `yaml:"-" json:"-"`
	Default []CandidateSpec `yaml:"default" json:"default"`
	Sources []SourceSpec    `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Styles maps lower cased style names to their config.
type Styles map[string]Style

func (s Styles) Lookup(name string) (Style, error) {
	style, ok := s[strings.ToLower(name)]
	if !ok {
		return Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return style, nil
}

func (s Styles) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Img is the default image of a picture along with its own srcset.
type Img struct {
	Image      *Image       `yaml:"image" json:"image"`
	Candidates CandidateSet `yaml:"candidates" json:"candidates"`
	Srcset     string       `yaml:"srcset" json:"srcset"`
}

type SourceGroup struct {
	Media      string       `yaml:"media" json:"media"`
	Candidates CandidateSet `yaml:"candidates" json:"candidates"`
	Srcset     string       `yaml:"srcset" json:"srcset"`
}

type PictureDescriptor struct {
	Style   string        `yaml:"style" json:"style"`
	Default Img           `yaml:"default" json:"default"`
	Sources []SourceGroup `yaml:"sources" json:"sources"`
}
