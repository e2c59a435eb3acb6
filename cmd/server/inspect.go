package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rpggio/chessnote/internal/codec"
	"github.com/rpggio/chessnote/internal/domain/tree"
	"github.com/rpggio/chessnote/internal/domain/xiangqi"
	"github.com/spf13/cobra"
)

var (
	inspectJSON    bool
	inspectHydrate bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|->",
	Short: "Decode a stored tree payload",
	Long: `Decode a rootNode payload, compressed or legacy JSON, and summarize it.

Reads from stdin when the argument is "-". With --json the decoded tree is
printed; --hydrate adds board grids regenerated from each node's FEN.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the decoded tree as JSON")
	inspectCmd.Flags().BoolVar(&inspectHydrate, "hydrate", false, "regenerate board grids before printing")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	return inspectPayload(cmd.OutOrStdout(), string(data), inspectJSON, inspectHydrate)
}

func inspectPayload(w io.Writer, payload string, asJSON, hydrate bool) error {
	root, err := codec.Decode(payload)
	if err != nil {
		return err
	}
	if hydrate {
		root = tree.Hydrate(root, nil, xiangqi.BoardFromFEN)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(root)
	}

	format := "compressed"
	if codec.IsLegacy(payload) {
		format = "legacy"
	}
	fmt.Fprintf(w, "format: %s\n", format)
	fmt.Fprintf(w, "nodes:  %d\n", tree.Count(root))
	fmt.Fprintf(w, "depth:  %d\n", tree.Depth(root))
	fmt.Fprintf(w, "root:   %s\n", root.FEN)
	return nil
}
