package transform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"picturebot/internal/core/domain"
	"strconv"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type runFunc func(ctx context.Context, args []string) ([]byte, error)

func execRun(ctx context.Context, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
}

// Magick performs manipulations with the ImageMagick binaries. Derived files are
// named after their variant identifier, so rendering the same variant twice reuses
// the existing file.
type Magick struct {
	convertBinary  []string
	identifyBinary []string
	dir            string
	baseURL        string
	run            runFunc
	renders        singleflight.Group
}

func NewMagick(dir, baseURL string) (*Magick, error) {
	m := &Magick{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/"), run: execRun}
	commands := [][]string{{"magick", "convert", "-version"}, {"convert", "-version"}}

	for _, command := range commands {
		_, err := exec.Command(command[0], command[1:]...).Output()
		if err != nil {
			log.Debug().Strs("command", command).Msg("binary not found")
			continue
		}

		log.Debug().Strs("command", command).Msg("binary found")
		m.convertBinary = command[:len(command)-1]
		if command[0] == "magick" {
			m.identifyBinary = []string{"magick", "identify"}
		} else {
			m.identifyBinary = []string{"identify"}
		}
		break
	}

	if len(m.convertBinary) == 0 {
		return nil, errors.New("magick binary not available")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	return m, nil
}

// Open identifies a local file and returns it as a source image.
func (m *Magick) Open(ctx context.Context, path string) (*domain.Image, error) {
	width, height, err := m.identify(ctx, path)
	if err != nil {
		return nil, err
	}

	return &domain.Image{
		URL:    m.url(path),
		Path:   path,
		Format: extension(path),
		Width:  width,
		Height: height,
	}, nil
}

func (m *Magick) Convert(ctx context.Context, img *domain.Image, format string) (*domain.Image, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		return nil, fmt.Errorf("%w: empty target format", domain.ErrInvalidArguments)
	}

	return m.render(ctx, img, domain.Manipulation{
		Method:    domain.MethodExtRewrite,
		Arguments: []any{img.Format, format},
	}, format)
}

// Operations returns the manipulations supported on top of ImageMagick.
func (m *Magick) Operations() []Operation {
	return []Operation{
		m.sized("ResizedImage", 2, func(s []int) []string {
			return []string{"-resize", fmt.Sprintf("%dx%d!", s[0], s[1])}
		}),
		m.sized("Fit", 2, func(s []int) []string {
			return []string{"-resize", fmt.Sprintf("%dx%d", s[0], s[1])}
		}),
		m.sized("FitMax", 2, func(s []int) []string {
			return []string{"-resize", fmt.Sprintf("%dx%d>", s[0], s[1])}
		}),
		m.sized("Fill", 2, func(s []int) []string {
			return []string{"-resize", fmt.Sprintf("%dx%d^", s[0], s[1]),
				"-gravity", "center", "-extent", fmt.Sprintf("%dx%d", s[0], s[1])}
		}),
		m.sized("ScaleWidth", 1, func(s []int) []string {
			return []string{"-resize", fmt.Sprintf("%dx", s[0])}
		}),
		m.sized("ScaleHeight", 1, func(s []int) []string {
			return []string{"-resize", fmt.Sprintf("x%d", s[0])}
		}),
		m.sized("ScaleMaxWidth", 1, func(s []int) []string {
			return []string{"-resize", fmt.Sprintf("%dx>", s[0])}
		}),
		m.sized("ScaleMaxHeight", 1, func(s []int) []string {
			return []string{"-resize", fmt.Sprintf("x%d>", s[0])}
		}),
		m.sized("CropWidth", 1, func(s []int) []string {
			return []string{"-gravity", "center", "-crop", fmt.Sprintf("%dx+0+0", s[0]), "+repage"}
		}),
		m.sized("CropHeight", 1, func(s []int) []string {
			return []string{"-gravity", "center", "-crop", fmt.Sprintf("x%d+0+0", s[0]), "+repage"}
		}),
		{Name: "Pad", SizeArgs: []int{0, 1}, Apply: m.pad},
		{Name: "Quality", SizeArgs: []int{}, Apply: m.quality},
		{Name: "Greyscale", SizeArgs: []int{}, Apply: func(ctx context.Context, img *domain.Image,
			manipulation domain.Manipulation) (*domain.Image, error) {
			return m.render(ctx, img, manipulation, img.Format, "-colorspace", "Gray")
		}},
	}
}

// sized builds an operation taking n positive pixel sizes.
func (m *Magick) sized(name string, n int, args func(sizes []int) []string) Operation {
	return Operation{
		Name: name,
		Apply: func(ctx context.Context, img *domain.Image, manipulation domain.Manipulation) (*domain.Image, error) {
			sizes, err := positiveSizes(manipulation.Arguments, n)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return m.render(ctx, img, manipulation, img.Format, args(sizes)...)
		},
	}
}

func (m *Magick) pad(ctx context.Context, img *domain.Image, manipulation domain.Manipulation) (*domain.Image, error) {
	sizes, err := positiveSizes(manipulation.Arguments, 2)
	if err != nil {
		return nil, fmt.Errorf("Pad: %w", err)
	}

	background := "white"
	if len(manipulation.Arguments) > 2 {
		background, err = domain.StringArgument(manipulation.Arguments, 2)
		if err != nil {
			return nil, fmt.Errorf("Pad: %w", err)
		}
	}

	geometry := fmt.Sprintf("%dx%d", sizes[0], sizes[1])
	return m.render(ctx, img, manipulation, img.Format,
		"-resize", geometry, "-background", background, "-gravity", "center", "-extent", geometry)
}

func (m *Magick) quality(ctx context.Context, img *domain.Image,
	manipulation domain.Manipulation) (*domain.Image, error) {
	q, err := domain.IntArgument(manipulation.Arguments, 0)
	if err != nil {
		return nil, fmt.Errorf("Quality: %w", err)
	}
	if q < 1 || q > 100 {
		return nil, fmt.Errorf("Quality: %w: %d not within 1-100", domain.ErrInvalidArguments, q)
	}

	return m.render(ctx, img, manipulation, img.Format, "-quality", strconv.Itoa(q))
}

func (m *Magick) render(ctx context.Context, img *domain.Image, manipulation domain.Manipulation, format string,
	ops ...string) (*domain.Image, error) {
	if img.Path == "" {
		return nil, fmt.Errorf("%w: image has no local file", domain.ErrMissingImage)
	}

	derived, err := domain.Derive(img, manipulation, "", "", format, 0, 0)
	if err != nil {
		return nil, err
	}

	derived.Path = filepath.Join(m.dir, fmt.Sprintf("%s__%s.%s", stem(img.Source().Path), derived.Variant, format))
	derived.URL = m.url(derived.Path)

	l := log.With().Str("variant", derived.Variant).Str("path", derived.Path).Logger()

	// identical variants requested concurrently share one magick run
	_, err, shared := m.renders.Do(derived.Path, func() (any, error) {
		if _, err := os.Stat(derived.Path); err == nil {
			l.Debug().Msg("variant already rendered")
			return nil, nil
		}
		return nil, m.convert(ctx, l, img.Path, derived.Path, format, ops)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", manipulation.Method, err)
	}
	if shared {
		l.Debug().Msg("joined concurrent render")
	}

	derived.Width, derived.Height, err = m.identify(ctx, derived.Path)
	if err != nil {
		return nil, err
	}

	return derived, nil
}

// convert renders into a temporary file next to out and renames it into place, so
// out either does not exist or is complete.
func (m *Magick) convert(ctx context.Context, l zerolog.Logger, in, out, format string, ops []string) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(out), "."+id.String()+"."+format)

	args := append(append(append([]string{}, m.convertBinary...), in), ops...)
	args = append(args, tmp)

	output, err := m.run(ctx, args)
	if err != nil {
		l.Error().Bytes("magickStderr", output).Err(err).Msg("magick command failed")
		removeTemp(tmp)
		return err
	}

	if err := os.Rename(tmp, out); err != nil {
		removeTemp(tmp)
		return fmt.Errorf("failed to store rendered variant: %w", err)
	}
	l.Debug().Msg("magick command finished")

	return nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temporary file")
	}
}

func (m *Magick) identify(ctx context.Context, path string) (int, int, error) {
	args := append(append([]string{}, m.identifyBinary...), "-format", "%w %h", path+"[0]")

	out, err := m.run(ctx, args)
	if err != nil {
		log.Error().Bytes("magickStderr", out).Err(err).Str("path", path).Msg("identify failed")
		return 0, 0, fmt.Errorf("failed to identify %s: %w", path, err)
	}

	var width, height int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%d %d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("unexpected identify output %q: %w", out, err)
	}

	return width, height, nil
}

func (m *Magick) url(path string) string {
	return m.baseURL + "/" + filepath.Base(path)
}

func positiveSizes(args []any, n int) ([]int, error) {
	sizes := make([]int, n)
	for i := range n {
		v, err := domain.IntArgument(args, i)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("%w: size %d must be positive, got %d", domain.ErrInvalidArguments, i, v)
		}
		sizes[i] = v
	}
	return sizes, nil
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
