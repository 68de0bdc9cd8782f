package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRetinaCmd() *cobra.Command {
	var (
		style  string
		factor string
		format string
	)

	cmd := &cobra.Command{
		Use:   "retina <image>",
		Short: "Render a higher density variant of a style's default image",
		Long: `Replays the manipulations of a style's default image at a pixel density
factor. No variant is produced when any step would need more pixels than the
image it is derived from provides.`,
		Example: `  picturebot retina photo.jpg --style hero --factor 2x`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newPictureStack()
			if err != nil {
				return err
			}

			picture, err := stack.assemble(cmd.Context(), args[0], style)
			if err != nil {
				return err
			}

			img, ok, err := stack.replay.Retina(cmd.Context(), picture.Default.Image, factor)
			if err != nil {
				return err
			}
			if !ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "no retina variant available")
				return err
			}

			return writeOutput(cmd.OutOrStdout(), format, img)
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "", "Style whose default image is replayed")
	cmd.Flags().StringVar(&factor, "factor", "2x", "Pixel density factor, e.g. 1.5x")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	_ = cmd.MarkFlagRequired("style")

	return cmd
}
