package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:           "imagesearch",
		Short:         "Search Kakao images and video clips and keep favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCMD(), searchCMD(), favoritesCMD(), shellCMD())
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
