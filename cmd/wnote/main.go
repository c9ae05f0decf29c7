package main

import (
	"fmt"
	"os"

	"github.com/franz/worshipnote/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "wnote",
		Short: "WorshipNote - manage a worship song library and its set lists",
		Long: `wnote manages a worship song database: song records, dated worship lists
and the sheet images that belong to them.

The database lives as JSON documents in a cloud-synced folder (OneDrive by
default) with a local SQLite cache, so the tool works offline and catches up
when the folder syncs. Sheet filenames are kept in a canonical
"Title (Chord) (id).jpg" form and loose files can be matched back to their
songs after manual renames.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/wnote.yaml)")
	rootCmd.PersistentFlags().String("db", "worshipnote-cache.db", "local cache database file")
	rootCmd.PersistentFlags().String("database-dir", "", "cloud-synced database directory (auto-detected when empty)")
	rootCmd.PersistentFlags().String("sheets-dir", "", "sheet image directory (default is Sheets next to the database)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("database-dir", rootCmd.PersistentFlags().Lookup("database-dir"))
	viper.BindPFlag("sheets-dir", rootCmd.PersistentFlags().Lookup("sheets-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("wnote")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("WNOTE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
