package domain

import "strings"

// CandidateDescriptor describes one srcset entry: the manipulations to apply to
// the source image and the density or width descriptor, e.g. "2x" or "480w".
type CandidateDescriptor struct {
	Manipulations VariantChain `yaml:"manipulations,omitempty" json:"manipulations,omitempty"`
	Descriptor    string       `yaml:"descriptor,omitempty" json:"descriptor,omitempty"`
}

// Candidate is a built srcset entry. A nil Image means building it failed.
type Candidate struct {
	Manipulations VariantChain `yaml:"manipulations" json:"manipulations"`
	Image         *Image       `yaml:"image,omitempty" json:"image,omitempty"`
	Descriptor    string       `yaml:"descriptor,omitempty" json:"descriptor,omitempty"`
}

func (c Candidate) Present() bool {
	return c.Image != nil
}

// CandidateSet keeps candidates in srcset order.
type CandidateSet []Candidate

// First returns the first candidate that has an image.
func (s CandidateSet) First() (*Image, bool) {
	for _, c := range s {
		if c.Present() {
			return c.Image, true
		}
	}
	return nil, false
}

// Present drops failed candidates.
func (s CandidateSet) Present() CandidateSet {
	out := make(CandidateSet, 0, len(s))
	for _, c := range s {
		if c.Present() {
			out = append(out, c)
		}
	}
	return out
}

// RenderObserver is notified around rendering a candidate set into a srcset string.
// AfterRender receives the rendered entries and returns the entries to join, which
// lets an observer add or rewrite entries.
type RenderObserver interface {
	BeforeRender(set CandidateSet)
	AfterRender(entries []string) []string
}

// Render returns the srcset value: "<url> <descriptor>" per present candidate,
// joined with ", ".
func (s CandidateSet) Render(observers ...RenderObserver) string {
	for _, o := range observers {
		o.BeforeRender(s)
	}

	entries := make([]string, 0, len(s))
	for _, c := range s {
		if !c.Present() {
			continue
		}

		entry := c.Image.URL
		if c.Descriptor != "" {
			entry += " " + c.Descriptor
		}
		entries = append(entries, entry)
	}

	for _, o := range observers {
		entries = o.AfterRender(entries)
	}

	return strings.Join(entries, ", ")
}
