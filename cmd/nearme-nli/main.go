package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/imkonsowa/nearme-nli/harness"
	"github.com/imkonsowa/nearme-nli/validation"
	"github.com/imkonsowa/nearme-nli/version"
)

var errInvalidOutput = errors.New("output failed validation")

var (
	configFile     string
	fixturesFlag   string
	translatorFlag string
	modeFlag       string
	tableFlag      string
	tablePathFlag  string
)

var rootCmd = &cobra.Command{
	Use:           "nearme-nli",
	Short:         "NearMe natural-language filter harness",
	Long:          "Translates natural-language place searches into NearMe filter objects and runs manual test fixtures against a language model or the rule translator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the manual test fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		fixtures, err := harness.LoadFixtures(a.cfg.Harness.Fixtures)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "\nError: %v\n", err)
			fmt.Fprintln(cmd.OutOrStdout(), "Please create this file with your JSON test cases.")
			return err
		}

		tr, err := a.translator(cmd.Context())
		if err != nil {
			a.log.WithError(err).Warn("translator setup failed", nil)
			harness.ReportCannotRun(cmd.OutOrStdout(), err)
			return nil
		}

		opts := []harness.Option{
			harness.WithSource(a.cfg.Harness.Fixtures),
			harness.WithMode(a.mode),
		}
		if a.cfg.Harness.Validate {
			v, err := a.validator()
			if err != nil {
				return err
			}
			opts = append(opts, harness.WithValidator(v))
		}

		harness.NewRunner(tr, cmd.OutOrStdout(), a.log, opts...).Run(cmd.Context(), fixtures)

		return nil
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate <query>",
	Short: "Translate one query and print the raw output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		tr, err := a.translator(cmd.Context())
		if err != nil {
			return err
		}

		res, err := tr.Translate(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), describe(res))

		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <output|->",
	Short: "Validate one translator output against the filter schema and table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		raw := args[0]
		if raw == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			raw = string(data)
		}

		v, err := a.validator()
		if err != nil {
			return err
		}

		report := v.Validate(raw)
		fmt.Fprintln(cmd.OutOrStdout(), report.String())
		if !report.Valid {
			return errInvalidOutput
		}

		return nil
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt <query>",
	Short: "Print the instruction prompt for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		p, err := a.prompt()
		if err != nil {
			return err
		}

		out, err := p.Render(strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), out)

		return nil
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the selected lookup table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(a.table)
		if err != nil {
			return fmt.Errorf("failed to encode table: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(out)

		return err
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the configured output mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(validation.SchemaFor(a.mode), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nearme-nli %s\n", version.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(runCmd, translateCmd, validateCmd, promptCmd, tablesCmd, schemaCmd, versionCmd)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to configuration file (default: config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&translatorFlag, "translator", "", "translator to use: llm or rules")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "output mode: envelope or bare")
	rootCmd.PersistentFlags().StringVar(&tableFlag, "table", "", "lookup table name")
	rootCmd.PersistentFlags().StringVar(&tablePathFlag, "table-file", "", "YAML file holding the lookup table")

	runCmd.Flags().StringVar(&fixturesFlag, "fixtures", "", "path to the JSON fixture file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
