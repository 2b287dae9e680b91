package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notibot",
		Short: "Telegram notes bot with daily horoscope pushes and multi-model chat",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(runCmd())
	root.AddCommand(modelsCmd())
	root.AddCommand(dueCmd())

	return root
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot, the push scheduler and the metrics listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
}

func modelsCmd() *cobra.Command {
	var setID int64

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect or switch the model registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(setID)
		},
	}

	cmd.Flags().Int64Var(&setID, "set", 0, "switch the active model to this id")
	return cmd
}

func dueCmd() *cobra.Command {
	var (
		date string
		hour int
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show users due for the daily push",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDue(date, hour)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "calendar date YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&hour, "hour", -1, "clock hour 0-23 (default: current hour)")
	return cmd
}
