package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/detox/app"
	"github.com/solanahub/solblaze-detox/stake"
	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "detox",
	Short:         "Find stake delegated to harmful validators and move it to the SolBlaze pool",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (.json or .yaml)")
	rootCmd.AddCommand(serveCmd(), validatorsCmd(), accountsCmd(), planCmd())
}

func loadDetox(cmd *cobra.Command) (*app.Detox, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	return app.NewDetox(cmd.Context(), cfg)
}

func printJson(v interface{}) error {
	infoJson, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(infoJson))
	return err
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the http api until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detox, err := loadDetox(cmd)
			if err != nil {
				return err
			}
			detox.Service()
			return nil
		},
	}
}

func validatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validators",
		Short: "Print the combined validator registry, bad first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detox, err := loadDetox(cmd)
			if err != nil {
				return err
			}
			verdicts, err := detox.Validators(cmd.Context())
			if err != nil {
				return err
			}
			return printJson(verdicts)
		},
	}
}

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <owner>",
		Short: "Print the classified active stake accounts of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := stake.ParseOwner(args[0])
			if err != nil {
				return err
			}
			detox, err := loadDetox(cmd)
			if err != nil {
				return err
			}
			views, err := detox.StakeAccounts(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return printJson(views)
		},
	}
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <owner> <stakeAccount>",
		Short: "Print the unsigned transaction moving a stake account into the pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := stake.ParseOwner(args[0])
			if err != nil {
				return err
			}
			detox, err := loadDetox(cmd)
			if err != nil {
				return err
			}
			plan, err := detox.PlanRemediation(cmd.Context(), owner, args[1])
			if err != nil {
				return err
			}
			return printJson(plan)
		},
	}
}
