package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagSQL     string
	flagInFile  string
	flagOutFile string
	flagConfig  string
)

// usageError marks input-level mistakes that exit with code 2.
type usageError string

func (e usageError) Error() string { return string(e) }

var rootCmd = &cobra.Command{
	Use:           "pgconvert",
	Short:         "Convert MySQL SQL statements to PostgreSQL SQL",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	rootCmd.Flags().StringVar(&flagSQL, "sql", "", "a MySQL SQL string to convert")
	rootCmd.Flags().StringVar(&flagInFile, "in-file", "", "input file containing MySQL SQL (one or more statements)")
	rootCmd.Flags().StringVar(&flagOutFile, "out-file", "", "output file path (default: stdout)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to conversion TOML config file")
	rootCmd.MarkFlagsMutuallyExclusive("sql", "in-file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var uerr usageError
		if errors.As(err, &uerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := defaultConvertConfig()
	if flagConfig != "" {
		loaded, err := loadConfig(flagConfig)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	var sqlText string
	switch {
	case flagSQL != "":
		sqlText = flagSQL
	case flagInFile != "":
		data, err := os.ReadFile(flagInFile)
		if err != nil {
			if os.IsNotExist(err) {
				return usageError(fmt.Sprintf("input file not found: %s", flagInFile))
			}
			return fmt.Errorf("read input: %w", err)
		}
		sqlText = string(data)
	default:
		return usageError("no SQL provided: use --sql or --in-file")
	}

	results, err := convertMySQLToPostgres(sqlText, &cfg)
	if err != nil {
		return usageError(err.Error())
	}
	output := formatPlainOutput(results)

	if flagOutFile != "" {
		if err := os.WriteFile(flagOutFile, []byte(output), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Printf("wrote %d statement(s) to %s", len(results), flagOutFile)
		return nil
	}
	_, err = os.Stdout.WriteString(output)
	return err
}
