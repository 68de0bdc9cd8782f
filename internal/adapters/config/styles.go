package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"picturebot/internal/core/domain"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type stylesFile struct {
	Styles map[string]styleEntry `yaml:"styles"`
}

type styleEntry struct {
	Default candidateList `yaml:"default"`
	Sources sourceList    `yaml:"sources"`
}

// candidateList accepts a list of candidates or a single candidate mapping.
type candidateList []domain.CandidateSpec

func (c *candidateList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var spec domain.CandidateSpec
		if err := value.Decode(&spec); err != nil {
			return err
		}
		*c = candidateList{spec}
		return nil
	case yaml.SequenceNode:
		var specs []domain.CandidateSpec
		if err := value.Decode(&specs); err != nil {
			return err
		}
		*c = specs
		return nil
	default:
		if value.Tag == "!!null" {
			*c = nil
			return nil
		}
		return fmt.Errorf("%w: line %d: expected candidate list", domain.ErrInvalidSourceConfig, value.Line)
	}
}

// sourceList keeps the configured order of sources. A mapping is keyed by media
// condition, a sequence is positional with the media set on each entry.
type sourceList []domain.SourceSpec

func (s *sourceList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		sources := make(sourceList, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, node := value.Content[i], value.Content[i+1]

			spec, err := decodeSource(node)
			if err != nil {
				return err
			}
			spec.Key = key.Value
			sources = append(sources, spec)
		}
		*s = sources
		return nil
	case yaml.SequenceNode:
		sources := make(sourceList, 0, len(value.Content))
		for i, node := range value.Content {
			spec, err := decodeSource(node)
			if err != nil {
				return err
			}
			spec.Key = strconv.Itoa(i)
			sources = append(sources, spec)
		}
		*s = sources
		return nil
	default:
		return fmt.Errorf("%w: line %d: sources must be a mapping or a list", domain.ErrInvalidSourceConfig,
			value.Line)
	}
}

// decodeSource reads either a bare candidate list or a {media, candidates} mapping.
func decodeSource(node *yaml.Node) (domain.SourceSpec, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var candidates candidateList
		if err := node.Decode(&candidates); err != nil {
			return domain.SourceSpec{}, err
		}
		return domain.SourceSpec{Candidates: candidates}, nil
	case yaml.MappingNode:
		var spec domain.SourceSpec
		if err := node.Decode(&spec); err != nil {
			return domain.SourceSpec{}, err
		}
		return spec, nil
	default:
		return domain.SourceSpec{}, fmt.Errorf("%w: line %d: expected a candidate list", domain.ErrInvalidSourceConfig,
			node.Line)
	}
}

// LoadStyles reads a styles file from disk.
func LoadStyles(path string) (domain.Styles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read styles file: %w", err)
	}

	styles, err := ParseStyles(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse styles file %s: %w", path, err)
	}

	log.Info().Str("path", path).Strs("styles", styles.Names()).Msg("loaded picture styles")

	return styles, nil
}

// ParseStyles decodes styles and checks that every style has a default.
func ParseStyles(data []byte) (domain.Styles, error) {
	var f stylesFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	styles := make(domain.Styles, len(f.Styles))
	for name, entry := range f.Styles {
		key := strings.ToLower(name)
		if _, exists := styles[key]; exists {
			return nil, fmt.Errorf("style %q is defined twice", key)
		}

		if len(entry.Default) == 0 {
			return nil, fmt.Errorf("%w for style %q", domain.ErrMissingDefaultConfig, name)
		}

		for i, source := range entry.Sources {
			if len(source.Candidates) == 0 {
				return nil, fmt.Errorf("%w: source %d of style %q has no candidates", domain.ErrInvalidSourceConfig,
					i, name)
			}
		}

		styles[key] = domain.Style{
			Name:    key,
			Default: entry.Default,
			Sources: entry.Sources,
		}
	}

	return styles, nil
}
