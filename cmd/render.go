package cmd

import (
	"picturebot/internal/core/domain"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		style   string
		format  string
		convert string
	)

	cmd := &cobra.Command{
		Use:   "render <image>",
		Short: "Render the picture descriptor of a style",
		Long: `Renders every candidate of a style for a local image or an http(s) URL and
prints the resulting picture descriptor.

With --convert, every rendered candidate is additionally re-encoded in the
given format and the descriptor lists the converted files.`,
		Example: `  # Render the hero style
  picturebot render photo.jpg --style hero

  # Render as webp and print JSON
  picturebot render photo.jpg --style hero --convert webp --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newPictureStack()
			if err != nil {
				return err
			}

			picture, err := stack.assemble(cmd.Context(), args[0], style)
			if err != nil {
				return err
			}

			if convert != "" {
				picture = stack.assembler.Broadcast(cmd.Context(), picture, domain.MethodConvert, convert)
			}

			return writeOutput(cmd.OutOrStdout(), format, picture)
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "", "Style to render")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVar(&convert, "convert", "", "Re-encode every candidate, e.g. webp")
	_ = cmd.MarkFlagRequired("style")

	return cmd
}
