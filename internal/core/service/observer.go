package service

import (
	"picturebot/internal/core/domain"
	"strings"

	"github.com/rs/zerolog/log"
)

// FailureLogger reports candidates that are left out of a srcset because they could not be built.
type FailureLogger struct{}

func (FailureLogger) BeforeRender(set domain.CandidateSet) {
	for _, c := range set {
		if c.Present() {
			continue
		}
		log.Debug().Str("descriptor", c.Descriptor).Str("manipulations", chainString(c.Manipulations)).
			Msg("omitting failed candidate from srcset")
	}
}

func (FailureLogger) AfterRender(entries []string) []string {
	return entries
}

func chainString(chain domain.VariantChain) string {
	steps := make([]string, len(chain))
	for i, m := range chain {
		steps[i] = m.String()
	}
	return strings.Join(steps, " > ")
}
