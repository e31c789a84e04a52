package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "pdfoutline",
		Short:         "Extract the title and heading outline of PDF files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (default ./pdfoutline.yaml, then $HOME/.pdfoutline/)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override log.level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "override log.format: text|json")

	root.AddCommand(extractCmd(g))
	root.AddCommand(batchCmd(g))
	root.AddCommand(watchCmd(g))
	root.AddCommand(configCmd())
	root.AddCommand(schemaCmd())
	return root
}
