// Package commands implements the CLI commands for hebscrape.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "hebscrape",
	Version: version.String(),
	Short:   "Resilient product scraper for dynamic grocery storefronts",
	Long: `Hebscrape extracts product listings from heavily dynamic e-commerce
pages: it settles infinite scroll, exhausts horizontal carousels, locates
product cards through a cascade of selectors, and pulls title, price,
image and hyperlink with per-field fallback strategies.

Examples:
  # Scrape one listing page
  hebscrape scrape -u "https://www.heb.com/category/snacks"

  # Discover categories from the homepage and scrape them all
  hebscrape scrape -u "https://www.heb.com" --discover --max-categories 5

  # Static mode (no browser) with CSV output
  hebscrape scrape -u "https://www.heb.com/category/snacks" \
      --mode static --format csv -o products.csv`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate(version.Full() + "\n")

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.hebscrape.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".hebscrape")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HEBSCRAPE")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
