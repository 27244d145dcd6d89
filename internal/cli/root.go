package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dbPath  string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vendorlens",
	Short: "VendorLens - invoice scanning and vendor identification",
	Long: `VendorLens extracts structured invoice fields (company, total, date,
invoice number) from scanned documents and resolves the detected company
against a catalog of known businesses using exact and fuzzy keyword
matching.

Scans run fully offline: OCR via Tesseract, matching against a local
SQLite catalog.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vendorlens v1.0.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "vendorlens.db", "path to the catalog database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in environment variables
func initConfig() {
	// Read in environment variables that match VENDORLENS_*
	viper.SetEnvPrefix("VENDORLENS")
	viper.AutomaticEnv()
}
