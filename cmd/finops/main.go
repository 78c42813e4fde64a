package main

import (
	"fmt"
	"os"

	"github.com/arjun2112/finops-engine/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "finops"}

func main() {
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
