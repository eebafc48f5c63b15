package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"hxinfer/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server over stdio",
	Long: `Lsp speaks the Language Server Protocol on stdin/stdout: diagnostics on
edit, expression types on hover and inferred variable types as inlay hints.`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 0, "delay before re-checking after an edit (0=300ms)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:       debounce,
		MaxDiagnostics: maxDiagnostics,
		Log:            cmd.ErrOrStderr(),
	})
	err = server.Run(cmd.Context())
	if errors.Is(err, lsp.ErrExit) {
		return nil
	}
	return err
}
