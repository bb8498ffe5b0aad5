package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mathemads/bonsai"
	"github.com/mathemads/bonsai/internal/logging"
	"github.com/mathemads/bonsai/pkg/adapters/graphdoc"
	"github.com/mathemads/bonsai/pkg/config"
)

var convertCmd = &cobra.Command{
	Use:   "convert <graph-file>",
	Short: "Compile a graph document to bidding text",
	Long:  `Reads a decision-tree graph document, runs the full pass pipeline and writes the bidding text to stdout or to --output.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args[0])
	},
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "Write the program to a file instead of stdout")
	convertCmd.Flags().Bool("base64", false, "Base64-encode the emitted text")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, graphPath string) error {
	cfg := config.New()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	data, err := os.ReadFile(graphPath)
	if err != nil {
		return fmt.Errorf("failed to read graph: %w", err)
	}
	t, err := graphdoc.Parse(data)
	if err != nil {
		return err
	}

	opts := []bonsai.Option{}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts = append(opts, bonsai.WithLogger(logging.New(slog.LevelDebug)))
	}
	conv := bonsai.New(opts...)

	var text string
	if encode, _ := cmd.Flags().GetBool("base64"); encode {
		text, err = conv.ConvertBase64(t, cfg)
	} else {
		text, err = conv.Convert(t, cfg)
	}
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		return os.WriteFile(out, []byte(text), 0o644)
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
