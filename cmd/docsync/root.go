package main

import (
	"fmt"
	"os"

	"github.com/inkforge/docsync/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "docsync: project document sync with conflict detection and backups",
	Long:  `docsync is a client for the docsync server: load and save project documents, inspect and restore backups, and check sync status.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(initConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.docsync.yaml)")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "docsync server base URL")
	rootCmd.PersistentFlags().String("token", "", "API bearer token")

	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".docsync")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("DOCSYNC")
	viper.AutomaticEnv()

	// A missing config file is fine; flags and env still apply.
	_ = viper.ReadInConfig()
}

func newClient() *client.Client {
	return client.New(viper.GetString("server"), viper.GetString("token"))
}
