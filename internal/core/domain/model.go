package domain

type Message struct {
	ID       int
	ChatID   int64
	Username string
	ImageURL string
	Text     string
}

type Action string

const (
	Typing       Action = "typing"
	SendingPhoto Action = "sending_photo"
)

// Manipulation is a single named transform step, e.g. ScaleWidth[800].
type Manipulation struct {
	Method    string `yaml:"method" json:"method"`
	Arguments []any  `yaml:"arguments,omitempty" json:"arguments,omitempty"`
}

// VariantChain lists the manipulations that produced an image, oldest first.
// An empty chain describes a source image.
type VariantChain []Manipulation

// Image is either a source image (Base == nil) or a variant derived from Base.
type Image struct {
	URL    string `yaml:"url" json:"url"`
	Path   string `yaml:"-" json:"-"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	// RenderWidth and RenderHeight override the size the image is displayed at.
	// Zero means the native size.
	RenderWidth  int    `yaml:"render_width,omitempty" json:"render_width,omitempty"`
	RenderHeight int    `yaml:"render_height,omitempty" json:"render_height,omitempty"`
	Variant      string `yaml:"variant,omitempty" json:"variant,omitempty"`
	Base         *Image `yaml:"-" json:"-"`
}

// Derive creates a variant of base produced by m. The variant identifier of the
// result is the base's identifier with the encoded manipulation appended.
func Derive(base *Image, m Manipulation, path, url, format string, width, height int) (*Image, error) {
	segment, err := EncodeManipulation(m)
	if err != nil {
		return nil, err
	}

	variant := segment
	if base.Variant != "" {
		variant = base.Variant + VariantSeparator + segment
	}

	return &Image{
		URL:     url,
		Path:    path,
		Format:  format,
		Width:   width,
		Height:  height,
		Variant: variant,
		Base:    base,
	}, nil
}

func (i *Image) IsSource() bool {
	return i.Base == nil
}

// Source follows the base references back to the source image.
func (i *Image) Source() *Image {
	img := i
	for img.Base != nil {
		img = img.Base
	}
	return img
}

// WithRenderSize returns a copy of the image that renders at width x height.
func (i *Image) WithRenderSize(width, height int) *Image {
	c := *i
	c.RenderWidth = width
	c.RenderHeight = height
	return &c
}

// DisplaySize returns the size the image should be laid out with.
func (i *Image) DisplaySize() (int, int) {
	w, h := i.Width, i.Height
	if i.RenderWidth > 0 {
		w = i.RenderWidth
	}
	if i.RenderHeight > 0 {
		h = i.RenderHeight
	}
	return w, h
}
