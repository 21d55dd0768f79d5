package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/habicasa/backend/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	apiURL   string
	cfgFile  string
	apiToken string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "habictl",
	Short: "HabiCasa ally API CLI",
	Long: `habictl is the command-line interface for the HabiCasa ally API.

It drives the phone verification flow and lets you browse properties and
manage leads from the terminal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.habicasa")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if apiURL == "" {
			apiURL = viper.GetString("api_url")
		}
		if apiURL == "" {
			apiURL = "http://localhost:8080"
		}
		if apiToken == "" {
			apiToken = viper.GetString("api_token")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.habicasa/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "session token for authenticated commands")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(sendCodeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(propertiesCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(versionCmd)
}

func newClient() (*client.Client, error) {
	opts := []client.Option{}
	if apiToken != "" {
		opts = append(opts, client.WithToken(apiToken))
	}
	return client.New(apiURL, opts...)
}

// ── health ───────────────────────────────────────────────────────────────────

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the API's health endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.Health(context.Background()); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

// ── send-code ────────────────────────────────────────────────────────────────

var sendCodeCmd = &cobra.Command{
	Use:   "send-code <phone>",
	Short: "Request a verification code over WhatsApp",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.SendVerification(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("code sent")
		return nil
	},
}

// ── verify ───────────────────────────────────────────────────────────────────

var verifyCmd = &cobra.Command{
	Use:   "verify <phone> <code>",
	Short: "Verify a code and print the session token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.VerifyCode(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(res.Token)
		return nil
	},
}

// ── properties ───────────────────────────────────────────────────────────────

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List active property listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		props, err := c.ListProperties(context.Background())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCITY\tPRICE")
		for _, p := range props {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s %.2f\n",
				p.ID, p.Title, p.City, p.Currency, float64(p.PriceCents)/100)
		}
		return w.Flush()
	},
}

// ── leads ────────────────────────────────────────────────────────────────────

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Manage your lead pipeline",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your leads, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		out, err := c.ListLeads(context.Background())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCLIENT\tSTATUS\tCOMMISSION")
		for _, l := range out {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n",
				l.ID, l.ClientName, l.Status, float64(l.CommissionCents)/100)
		}
		return w.Flush()
	},
}

var leadNotes string

var leadsAddCmd = &cobra.Command{
	Use:   "add <property-id> <client-name> <client-phone>",
	Short: "Capture a new lead against a property",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		l, err := c.CreateLead(context.Background(), args[0], args[1], args[2], leadNotes)
		if err != nil {
			return err
		}
		fmt.Println(l.ID)
		return nil
	},
}

var leadsStatusCmd = &cobra.Command{
	Use:   "status <lead-id> <status>",
	Short: "Move a lead through the pipeline (nueva, contactado, visita, negociacion, ganada, perdida)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		l, err := c.UpdateLeadStatus(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s → %s\n", l.ID, l.Status)
		return nil
	},
}

func init() {
	leadsAddCmd.Flags().StringVar(&leadNotes, "notes", "", "free-form notes about the client")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsAddCmd)
	leadsCmd.AddCommand(leadsStatusCmd)
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the habictl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("habictl", version)
	},
}
