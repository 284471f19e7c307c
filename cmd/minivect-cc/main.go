package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/markflorisson88/minivect/pkg/codegen"
	"github.com/markflorisson88/minivect/pkg/codewriter"
	"github.com/markflorisson88/minivect/pkg/miniast"
	"github.com/markflorisson88/minivect/pkg/semantics"
	"github.com/markflorisson88/minivect/pkg/treeload"
)

var version = "0.1.0"

var (
	dAst    bool
	outPath string
	verbose bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "minivect-cc: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minivect-cc [file]",
		Short: "minivect-cc lowers a typed expression tree to C source",
		Long: `minivect-cc reads a YAML description of a typed expression/statement
tree and lowers it to C through the minivect code generator. It exists to
exercise the generator; the upstream parser and type checker are separate
tools.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			return compile(out, args[0])
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.Flags().BoolVar(&dAst, "dast", false, "dump the loaded tree instead of emitting C")
	rootCmd.Flags().StringVarP(&outPath, "output", "o", "", "write output to file instead of stdout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return rootCmd
}

func compile(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	prog, err := treeload.Load(data)
	if err != nil {
		return err
	}

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if dAst {
		miniast.NewPrinter(out).PrintProgram(prog)
		return nil
	}

	log := zap.NewNop()
	if verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
	}

	w := codewriter.New()
	gen := codegen.New(semantics.New(), w, codegen.WithLogger(log))
	if err := gen.GenerateProgram(prog); err != nil {
		return err
	}
	_, err = io.WriteString(out, w.String())
	return err
}
