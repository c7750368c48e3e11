/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomoncle/holidaykeeper"
	"github.com/tomoncle/holidaykeeper/config"
	"github.com/tomoncle/holidaykeeper/database"
	_ "github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/pagination"
	"github.com/tomoncle/holidaykeeper/source/nager"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config and configures logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg.ApplyLogging()
	return cfg, nil
}

// newKeeper opens the store and builds a Keeper. The caller must call
// database.CloseDB.
func newKeeper(ctx context.Context) (*holidaykeeper.Keeper, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.InitDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return holidaykeeper.NewKeeper(db, nager.New(cfg.Source), cfg.SyncOptions()), cfg, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var rootCmd = &cobra.Command{
	Use:           "holidaykeeper",
	Short:         "Synchronize and browse public holidays",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write the default configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		defer f.Close()
		if err := config.Write(f, config.Default(), config.FormatOf(path)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return config.Write(cmd.OutOrStdout(), cfg, format)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := database.InitDatabaseWithOptions(cmd.Context(), &cfg.Database, true); err != nil {
			return err
		}
		defer database.CloseDB()

		applied, err := database.NewMigrationManager(database.GetDB(), database.GetLogger()).GetAppliedMigrations(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, applied)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database health and pool statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := database.InitDatabaseWithOptions(cmd.Context(), &cfg.Database, false); err != nil {
			return err
		}
		defer database.CloseDB()
		return printJSON(cmd, map[string]interface{}{
			"health": database.GetHealthStatus(cmd.Context()),
			"stats":  database.GetDatabaseStats(),
		})
	},
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Store the countries offered by the remote source",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, _, err := newKeeper(cmd.Context())
		if err != nil {
			return err
		}
		defer database.CloseDB()

		inserted, err := k.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]int{"inserted": inserted})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load holidays for every stored country over a range of years",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, cfg, err := newKeeper(cmd.Context())
		if err != nil {
			return err
		}
		defer database.CloseDB()

		from, to := cfg.Sync.InitialFromYear, cfg.Sync.InitialToYear
		if cmd.Flags().Changed("from") {
			from, _ = cmd.Flags().GetInt("from")
		}
		if cmd.Flags().Changed("to") {
			to, _ = cmd.Flags().GetInt("to")
		}
		report, err := k.LoadYears(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-synchronize one year, or last year and this year",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, _, err := newKeeper(cmd.Context())
		if err != nil {
			return err
		}
		defer database.CloseDB()

		var report interface{}
		if cmd.Flags().Changed("year") {
			year, _ := cmd.Flags().GetInt("year")
			report, err = k.RefreshYear(cmd.Context(), year)
		} else {
			report, err = k.RefreshRecent(cmd.Context(), time.Now())
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize one country and year",
	RunE: func(cmd *cobra.Command, args []string) error {
		country, _ := cmd.Flags().GetString("country")
		year, _ := cmd.Flags().GetInt("year")

		k, _, err := newKeeper(cmd.Context())
		if err != nil {
			return err
		}
		defer database.CloseDB()

		report, err := k.RefreshCountry(cmd.Context(), country, year)
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Browse stored holidays one page at a time",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var p pagination.Params
		p.CountryCode, _ = flags.GetString("country")
		p.DateFrom, _ = flags.GetString("from")
		p.DateTo, _ = flags.GetString("to")
		p.HolidayType, _ = flags.GetString("type")
		p.NameContains, _ = flags.GetString("name")
		p.SortBy, _ = flags.GetString("sort")
		p.SortDirection, _ = flags.GetString("direction")
		p.Size, _ = flags.GetInt("size")
		p.Cursor, _ = flags.GetString("cursor")
		p.CursorID, _ = flags.GetString("cursor-id")

		req, err := p.Request()
		if err != nil {
			return err
		}
		k, _, err := newKeeper(cmd.Context())
		if err != nil {
			return err
		}
		defer database.CloseDB()

		page, err := k.Search(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd, page)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one country's holidays for a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		country, _ := cmd.Flags().GetString("country")
		year, _ := cmd.Flags().GetInt("year")

		k, _, err := newKeeper(cmd.Context())
		if err != nil {
			return err
		}
		defer database.CloseDB()

		deleted, err := k.Delete(cmd.Context(), country, year)
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]interface{}{"country": country, "year": year, "deleted": deleted})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("HOLIDAY_CONFIG"), "Path to a YAML or TOML config file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().String("format", config.FormatYAML, "Output format (yaml or toml)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(bootstrapCmd)

	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().Int("from", 0, "First year to load (defaults to sync.initial_from_year)")
	loadCmd.Flags().Int("to", 0, "Last year to load (defaults to sync.initial_to_year)")

	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().Int("year", 0, "Year to refresh (defaults to last year and this year)")

	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().String("country", "", "ISO 3166-1 alpha-2 country code")
	syncCmd.Flags().Int("year", time.Now().Year(), "Year to synchronize")
	_ = syncCmd.MarkFlagRequired("country")

	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().String("country", "", "Filter by country code")
	searchCmd.Flags().String("from", "", "Inclusive start date (YYYY-MM-DD), requires --to")
	searchCmd.Flags().String("to", "", "Inclusive end date (YYYY-MM-DD), requires --from")
	searchCmd.Flags().String("type", "", "Case-insensitive holiday type substring")
	searchCmd.Flags().String("name", "", "Case-insensitive name substring")
	searchCmd.Flags().String("sort", "name", "Sort field (name, date, countryCode)")
	searchCmd.Flags().String("direction", "ASC", "Sort direction (ASC or DESC)")
	searchCmd.Flags().IntP("size", "n", pagination.DefaultPageSize, "Page size")
	searchCmd.Flags().String("cursor", "", "nextCursor from the previous page")
	searchCmd.Flags().String("cursor-id", "", "nextCursorId from the previous page")

	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().String("country", "", "ISO 3166-1 alpha-2 country code")
	deleteCmd.Flags().Int("year", 0, "Year to delete")
	_ = deleteCmd.MarkFlagRequired("country")
	_ = deleteCmd.MarkFlagRequired("year")
}
