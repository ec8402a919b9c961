package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/billfold-dev/billfold/internal/importer"
	"github.com/billfold-dev/billfold/internal/ledger"
	"github.com/billfold-dev/billfold/internal/vendor"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank CSV exports",
	}
	importCmd.AddCommand(newImportListCommand(opts))
	importCmd.AddCommand(newImportRunCommand(opts))
	return importCmd
}

func newImportListCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List CSV files waiting in import/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			files, err := importer.Scan(a.dataDir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files waiting in import/")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tSIZE")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%d\n", f.Name, f.Size)
			}
			return tw.Flush()
		},
	}
	return cmd
}

func newImportRunCommand(opts *globalOptions) *cobra.Command {
	var mappingSpec, preset, account string
	var noHeader bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Import one CSV file into the ledger",
		Long: "Import one CSV file into the ledger. The file is looked up in " +
			"import/ first, then as a plain path. Descriptions are cleaned to " +
			"vendor names; similar existing vendors are reported for manual " +
			"review, never merged automatically.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			mapping, err := resolveMapping(a, mappingSpec, preset)
			if err != nil {
				return err
			}

			defaultAccount := account
			if defaultAccount == "" && a.cfg.Import.DefaultAccountID != 0 {
				defaultAccount = fmt.Sprintf("%d", a.cfg.Import.DefaultAccountID)
			}
			if defaultAccount == "" {
				return fmt.Errorf("no account given: pass --account or set import.default_account_id")
			}

			path := filepath.Join(a.dataDir, "import", args[0])
			inImportDir := true
			if _, err := os.Stat(path); os.IsNotExist(err) {
				path = args[0]
				inImportDir = false
			}

			result, err := runImport(a, path, importer.Options{Mapping: mapping, HasHeader: !noHeader}, defaultAccount)
			if err != nil {
				return err
			}

			if inImportDir && result.Imported > 0 {
				if err := importer.MarkProcessed(a.dataDir, filepath.Base(path)); err != nil {
					return err
				}
			}

			details := fmt.Sprintf("Imported %d transactions from %s (batch %s)",
				result.Imported, filepath.Base(path), result.BatchID)
			if err := a.finish("import", details, ""); err != nil {
				return err
			}

			printImportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingSpec, "mapping", "", "column mapping, e.g. date=0,desc=1,amount=2")
	cmd.Flags().StringVar(&preset, "preset", "", "named mapping: built-in or from import.mappings")
	cmd.Flags().StringVar(&account, "account", "", "account ID or name for rows without an account column")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "file has no header row")
	return cmd
}

// resolveMapping prefers an explicit spec, then built-in presets, then
// named mappings from billfold.yaml.
func resolveMapping(a *app, spec, preset string) (importer.ColumnMapping, error) {
	switch {
	case spec != "":
		return importer.ParseMapping(spec)
	case preset != "":
		if m, ok := importer.Preset(preset); ok {
			return m, nil
		}
		if s, ok := a.cfg.Import.Mappings[preset]; ok {
			return importer.ParseMapping(s)
		}
		return importer.ColumnMapping{}, fmt.Errorf("unknown preset %q", preset)
	default:
		return importer.ColumnMapping{}, fmt.Errorf("no mapping given: pass --mapping or --preset")
	}
}

func runImport(a *app, path string, opts importer.Options, defaultAccount string) (*importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	rows, rowErrs, err := importer.Parse(f, opts)
	if err != nil {
		return nil, err
	}

	// Snapshot existing vendors once; suggestions compare against the
	// ledger as it stood before this batch.
	descs, err := a.ledger.Descriptions()
	if err != nil {
		return nil, err
	}

	result := importer.NewResult(filepath.Base(path))
	result.Errors = rowErrs

	for _, row := range rows {
		acctRef := defaultAccount
		if row.Account != "" {
			acctRef = row.Account
		}
		acct, err := a.resolveAccount(acctRef)
		if err != nil {
			result.Errors = append(result.Errors, importer.RowError{Row: row.Row, Err: err})
			continue
		}

		cat, err := a.resolveCategory(row.Category, acct.BudgetType)
		if err != nil {
			result.Errors = append(result.Errors, importer.RowError{Row: row.Row, Err: err})
			continue
		}

		cleaned := vendor.Normalize(row.Description)

		txnID, err := a.ledger.Add(ledger.AddParams{
			Date:        row.Date,
			Description: cleaned,
			Amount:      row.Amount,
			AccountID:   acct.ID,
			CategoryID:  cat.ID,
			BudgetType:  acct.BudgetType,
			Notes:       row.Notes,
		})
		if err != nil {
			result.Errors = append(result.Errors, importer.RowError{Row: row.Row, Err: err})
			continue
		}

		result.Imported++
		result.TxnIDs = append(result.TxnIDs, txnID)

		if similar := vendor.FindSimilar(cleaned, descs); len(similar) > 0 {
			result.Suggestions = append(result.Suggestions, importer.Suggestion{
				Row:       row.Row,
				Cleaned:   cleaned,
				SimilarTo: similar,
			})
		}
	}

	// Parse-time and resolution errors share file row numbers; report them
	// in file order.
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Row < result.Errors[j].Row })

	return result, nil
}

func printImportResult(cmd *cobra.Command, result *importer.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d transactions from %s (batch %s)\n", result.Imported, result.File, result.BatchID)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "%d rows skipped:\n", len(result.Errors))
		for _, re := range result.Errors {
			fmt.Fprintf(out, "  %v\n", re)
		}
	}

	if len(result.Suggestions) > 0 {
		fmt.Fprintln(out, "Possible vendor matches (review with `billfold txn edit`):")
		for _, s := range result.Suggestions {
			fmt.Fprintf(out, "  %q resembles %s\n", s.Cleaned, strings.Join(s.SimilarTo, ", "))
		}
	}
}
