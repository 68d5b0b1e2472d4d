package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-pos-ws/pkg/logger"
	"go-pos-ws/pkg/posclient"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "posctl",
	Short:         "posctl: point-of-sale terminal client",
	Long:          "posctl talks to the POS API: sign in, ring up sales, restock and read the cash ledger.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(viper.GetString("env"))
	},
}

func init() {
	viper.SetEnvPrefix("POSCTL")
	viper.AutomaticEnv()
	viper.SetDefault("api_url", "http://localhost:3000")
	viper.SetDefault("currency", "MXN")
	viper.SetDefault("env", "development")

	rootCmd.PersistentFlags().String("api", "", "API base URL (env POSCTL_API_URL)")
	rootCmd.PersistentFlags().String("currency", "", "currency code for amounts (env POSCTL_CURRENCY)")
	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag("currency", rootCmd.PersistentFlags().Lookup("currency"))

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(watchCmd)

	// Shop
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(restockCmd)
	rootCmd.AddCommand(sellCmd)
	rootCmd.AddCommand(cashCmd)
	rootCmd.AddCommand(reportCmd)
}

// newClient builds an API client carrying the stored token, if any.
func newClient() *posclient.Client {
	return posclient.New(viper.GetString("api_url"), posclient.WithToken(loadToken()))
}

func currency() string {
	return viper.GetString("currency")
}
