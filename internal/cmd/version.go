package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/certwatch-app/certcheck/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, git commit, and build date of certcheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.GetInfo()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "certcheck\n")
		fmt.Fprintf(w, "  Version:    %s\n", info.Version)
		fmt.Fprintf(w, "  Commit:     %s\n", info.GitCommit)
		fmt.Fprintf(w, "  Build Date: %s\n", info.BuildDate)
		fmt.Fprintf(w, "  Go Version: %s\n", info.GoVersion)
		fmt.Fprintf(w, "  Platform:   %s/%s\n", info.OS, info.Arch)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
