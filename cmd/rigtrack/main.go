package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rigtrack/internal/app"
	"rigtrack/internal/config"
	"rigtrack/internal/database"
	"rigtrack/internal/encryption"
	"rigtrack/internal/model"
	"rigtrack/internal/track"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig loads the config file from the default (or overridden) location.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "AddPart", "Connect").
func newApp(operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// runMutating wraps a DB-mutating command: run errors mark the audit record
// as failed, and Close errors surface when the command itself succeeded.
func runMutating(operation string, fn func(a *app.App) error) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}

	runErr := fn(a)
	if runErr != nil {
		a.MarkFailed()
	}
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// addDateFlags registers the partial-date flags shared by every command that
// takes an event date.
func addDateFlags(cmd *cobra.Command) {
	cmd.Flags().Int("year", 0, "Event year")
	cmd.Flags().Int("month", 0, "Event month (requires --year)")
	cmd.Flags().Int("day", 0, "Event day (requires --month)")
}

// dateFromFlags assembles a partial date from the --year/--month/--day flags.
// All three absent yields the absent date.
func dateFromFlags(cmd *cobra.Command) (model.Date, error) {
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	day, _ := cmd.Flags().GetInt("day")

	if year == 0 && month == 0 && day == 0 {
		return model.Date{Precision: model.PrecisionNone}, nil
	}
	return model.NewDate(year, month, day)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
func promptPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(data), nil
}

func printBulkResult(result *track.BulkResult) {
	fmt.Printf("%d succeeded, %d failed\n", result.Succeeded, result.Failed)
	for _, err := range result.Errors {
		fmt.Printf("  %v\n", err)
	}
}

func printPartViews(views []*track.PartView) {
	if len(views) == 0 {
		fmt.Println("No parts found.")
		return
	}

	fmt.Printf("%-5s %-14s %-12s %-24s %-10s %-10s %s\n",
		"ID", "TYPE", "BRAND", "MODEL", "ACQUIRED", "STATUS", "RIG")
	for _, v := range views {
		fmt.Printf("%-5d %-14s %-12s %-24s %-10s %-10s %s\n",
			v.Part.ID, v.Part.Type, v.Part.Brand, v.Part.Model,
			v.Part.AcquiredAt.Display(), v.Status, v.RigName)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rigtrack",
	Short: "PC part provenance tracker",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new store ID
		storeID := uuid.New().String()

		cfg := config.NewConfig(storeID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Store ID: %s\n", storeID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Store ID: %s\n", cfg.StoreID)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Archive:  %s\n", cfg.Archive.Type)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var configKeysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return fmt.Errorf("creating encryptor: %w", err)
		}
		if enc.IsConfigured() {
			return fmt.Errorf("keys already exist at %s", cfg.Encryption.PrivateKeyPath)
		}

		passphrase, err := promptPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s (passphrase-encrypted)\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// part command
var partCmd = &cobra.Command{
	Use:   "part",
	Short: "Manage parts",
}

var partAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new part",
	RunE: func(cmd *cobra.Command, args []string) error {
		brand, _ := cmd.Flags().GetString("brand")
		mdl, _ := cmd.Flags().GetString("model")
		ptype, _ := cmd.Flags().GetString("type")
		notes, _ := cmd.Flags().GetString("notes")

		acquired, err := dateFromFlags(cmd)
		if err != nil {
			return err
		}

		partType, err := model.ParsePartType(ptype)
		if err != nil {
			return fmt.Errorf("%w (valid types: %s)", err, joinPartTypes())
		}

		return runMutating("AddPart", func(a *app.App) error {
			part, err := a.AddPart(track.PartParams{
				Brand:      brand,
				Model:      mdl,
				Type:       partType,
				AcquiredAt: acquired,
				Notes:      notes,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added part #%d: %s %s (%s)\n", part.ID, part.Brand, part.Model, part.Type)
			return nil
		})
	},
}

var partListCmd = &cobra.Command{
	Use:   "list",
	Short: "List parts",
	RunE: func(cmd *cobra.Command, args []string) error {
		typeFilter, _ := cmd.Flags().GetString("type")
		statusFilter, _ := cmd.Flags().GetString("status")
		search, _ := cmd.Flags().GetString("search")
		sortBy, _ := cmd.Flags().GetString("sort")
		desc, _ := cmd.Flags().GetBool("desc")

		filter := track.PartFilter{Search: search}
		if typeFilter != "" {
			pt, err := model.ParsePartType(typeFilter)
			if err != nil {
				return err
			}
			filter.Type = pt
		}
		if statusFilter != "" {
			st, err := model.ParseStatus(statusFilter)
			if err != nil {
				return err
			}
			filter.Status = st
		}

		direction := track.SortAsc
		if desc {
			direction = track.SortDesc
		}

		a, err := newApp("ListParts")
		if err != nil {
			return err
		}
		defer a.Close()

		views, err := a.Service().GetAllParts(filter, track.SortColumn(sortBy), direction)
		if err != nil {
			return err
		}

		printPartViews(views)
		return nil
	},
}

var partShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one part in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("ShowPart")
		if err != nil {
			return err
		}
		defer a.Close()

		view, err := a.Service().PartStatus(id)
		if err != nil {
			return err
		}

		part := view.Part
		fmt.Printf("Part #%d: %s %s\n", part.ID, part.Brand, part.Model)
		fmt.Printf("Type:     %s\n", part.Type)
		fmt.Printf("Acquired: %s\n", part.AcquiredAt.Display())
		fmt.Printf("Status:   %s\n", view.Status)
		if view.RigName != "" {
			fmt.Printf("Rig:      %s\n", view.RigName)
		}
		if part.Notes != "" {
			fmt.Printf("Notes:    %s\n", part.Notes)
		}

		disposal, err := a.Service().GetDisposalForPart(id)
		if err != nil {
			return err
		}
		if disposal != nil {
			fmt.Printf("Disposed: %s (%s)\n", disposal.DisposedAt.Display(), disposal.Reason)
		}

		var conns []*model.Connection
		if part.IsMotherboard() {
			conns, err = a.Service().GetConnectionsForMotherboard(id)
		} else {
			conns, err = a.Service().GetConnectionsForPart(id)
		}
		if err != nil {
			return err
		}

		if len(conns) > 0 {
			fmt.Println("\nConnections:")
			for _, c := range conns {
				end := "present"
				if !c.Open() {
					end = c.DisconnectedAt.Display()
				}
				counterpart := c.MotherboardID
				if part.IsMotherboard() {
					counterpart = c.PartID
				}
				fmt.Printf("  #%d  part %d  %s - %s\n", c.ID, counterpart, c.ConnectedAt.Display(), end)
			}
		}
		return nil
	},
}

var partEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a part's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		brand, _ := cmd.Flags().GetString("brand")
		mdl, _ := cmd.Flags().GetString("model")
		ptype, _ := cmd.Flags().GetString("type")
		notes, _ := cmd.Flags().GetString("notes")

		acquired, err := dateFromFlags(cmd)
		if err != nil {
			return err
		}

		return runMutating("EditPart", func(a *app.App) error {
			// Start from the stored part so unset flags keep their values.
			current, err := a.Service().GetPartByID(id)
			if err != nil {
				return err
			}

			params := track.PartParams{
				Brand:      current.Brand,
				Model:      current.Model,
				Type:       current.Type,
				AcquiredAt: current.AcquiredAt,
				Notes:      current.Notes,
			}
			if cmd.Flags().Changed("brand") {
				params.Brand = brand
			}
			if cmd.Flags().Changed("model") {
				params.Model = mdl
			}
			if cmd.Flags().Changed("type") {
				pt, err := model.ParsePartType(ptype)
				if err != nil {
					return err
				}
				params.Type = pt
			}
			if cmd.Flags().Changed("notes") {
				params.Notes = notes
			}
			if cmd.Flags().Changed("year") {
				params.AcquiredAt = acquired
			}

			part, err := a.UpdatePart(id, params)
			if err != nil {
				return err
			}
			fmt.Printf("Updated part #%d: %s %s\n", part.ID, part.Brand, part.Model)
			return nil
		})
	},
}

var partDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Soft-delete a part (recoverable)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		return runMutating("DeletePart", func(a *app.App) error {
			if err := a.DeletePart(id); err != nil {
				return err
			}
			fmt.Printf("Deleted part #%d (restore with `rigtrack part restore %d`)\n", id, id)
			return nil
		})
	},
}

var partRestoreCmd = &cobra.Command{
	Use:   "restore ID",
	Short: "Restore a disposed or deleted part",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		return runMutating("RestorePart", func(a *app.App) error {
			if err := a.RestorePart(id); err != nil {
				return err
			}
			fmt.Printf("Restored part #%d\n", id)
			return nil
		})
	},
}

var partHardDeleteCmd = &cobra.Command{
	Use:   "hard-delete ID",
	Short: "Permanently remove a part and all its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("hard-delete is irreversible: re-run with --force to confirm")
		}

		return runMutating("HardDeletePart", func(a *app.App) error {
			if err := a.HardDeletePart(id); err != nil {
				return err
			}
			fmt.Printf("Permanently removed part #%d\n", id)
			return nil
		})
	},
}

// connect command
var connectCmd = &cobra.Command{
	Use:   "connect PART_ID... MOTHERBOARD_ID",
	Short: "Connect part(s) to a motherboard",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		partIDs, motherboardID := ids[:len(ids)-1], ids[len(ids)-1]

		notes, _ := cmd.Flags().GetString("notes")
		keepExisting, _ := cmd.Flags().GetBool("keep-existing")

		date, err := dateFromFlags(cmd)
		if err != nil {
			return err
		}

		return runMutating("Connect", func(a *app.App) error {
			if len(partIDs) > 1 {
				result, err := a.BulkConnect(partIDs, motherboardID, date, notes, keepExisting)
				if err != nil {
					return err
				}
				printBulkResult(result)
				return nil
			}

			result, err := a.Connect(track.ConnectParams{
				PartID:        partIDs[0],
				MotherboardID: motherboardID,
				Date:          date,
				Notes:         notes,
				KeepExisting:  keepExisting,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Connected part #%d to motherboard #%d on %s\n",
				partIDs[0], motherboardID, result.Connection.ConnectedAt.Display())
			for _, c := range result.Displaced {
				fmt.Printf("Displaced: %s %s (connection #%d)\n",
					c.Part.Brand, c.Part.Model, c.Connection.ID)
			}
			for _, c := range result.Kept {
				fmt.Printf("Kept connected (same slot): %s %s (connection #%d)\n",
					c.Part.Brand, c.Part.Model, c.Connection.ID)
			}
			return nil
		})
	},
}

// disconnect command
var disconnectCmd = &cobra.Command{
	Use:   "disconnect PART_ID...",
	Short: "Disconnect part(s) from their motherboard",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		notes, _ := cmd.Flags().GetString("notes")
		connID, _ := cmd.Flags().GetInt64("connection")

		date, err := dateFromFlags(cmd)
		if err != nil {
			return err
		}

		return runMutating("Disconnect", func(a *app.App) error {
			if connID != 0 {
				if err := a.DisconnectConnection(connID, date, notes); err != nil {
					return err
				}
				fmt.Printf("Closed connection #%d\n", connID)
				return nil
			}

			if len(ids) > 1 {
				result, err := a.BulkDisconnect(ids, date, notes)
				if err != nil {
					return err
				}
				printBulkResult(result)
				return nil
			}

			closed, err := a.DisconnectPart(ids[0], date, notes)
			if err != nil {
				return err
			}
			fmt.Printf("Disconnected part #%d (%d connection(s) closed)\n", ids[0], closed)
			return nil
		})
	},
}

// dispose command
var disposeCmd = &cobra.Command{
	Use:   "dispose PART_ID...",
	Short: "Record that part(s) left use (sold, recycled, dead...)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		reason, _ := cmd.Flags().GetString("reason")
		notes, _ := cmd.Flags().GetString("notes")

		date, err := dateFromFlags(cmd)
		if err != nil {
			return err
		}

		return runMutating("Dispose", func(a *app.App) error {
			if len(ids) > 1 {
				result, err := a.BulkDispose(ids, date, reason, notes)
				if err != nil {
					return err
				}
				printBulkResult(result)
				return nil
			}

			disposal, err := a.Dispose(ids[0], date, reason, notes)
			if err != nil {
				return err
			}
			fmt.Printf("Disposed part #%d on %s (%s)\n", ids[0], disposal.DisposedAt.Display(), disposal.Reason)
			return nil
		})
	},
}

// rig command
var rigCmd = &cobra.Command{
	Use:   "rig",
	Short: "View and name rigs",
}

var rigListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active rigs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListRigs")
		if err != nil {
			return err
		}
		defer a.Close()

		rigs, err := a.Service().GetActiveRigs()
		if err != nil {
			return err
		}

		if len(rigs) == 0 {
			fmt.Println("No active rigs.")
			return nil
		}

		for _, rig := range rigs {
			name := rig.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("%s — %s %s (motherboard #%d)\n",
				name, rig.Motherboard.Brand, rig.Motherboard.Model, rig.Motherboard.ID)
			for _, p := range rig.Parts {
				fmt.Printf("  #%-4d %-14s %s %s\n", p.ID, p.Type, p.Brand, p.Model)
			}
		}
		return nil
	},
}

var rigHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed rig periods",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RigHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		histories, err := a.Service().GetHistoricalRigs()
		if err != nil {
			return err
		}

		if len(histories) == 0 {
			fmt.Println("No completed rig periods.")
			return nil
		}

		for _, h := range histories {
			fmt.Printf("%s %s (motherboard #%d):\n",
				h.Motherboard.Brand, h.Motherboard.Model, h.Motherboard.ID)
			for _, lc := range h.Lifecycles {
				name := lc.Name
				if name == "" {
					name = "(unnamed)"
				}
				fmt.Printf("  %d. %s — %s to %s\n",
					lc.Lifecycle.Sequence, name,
					lc.Lifecycle.Start.Display(), lc.Lifecycle.End.Display())
			}
		}
		return nil
	},
}

var rigNameCmd = &cobra.Command{
	Use:   "name MOTHERBOARD_ID NAME",
	Short: "Name the rig period starting at the given date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		name := args[1]

		start, err := dateFromFlags(cmd)
		if err != nil {
			return err
		}

		return runMutating("SetRigName", func(a *app.App) error {
			if err := a.SetRigName(id, start, name); err != nil {
				return err
			}
			fmt.Printf("Named rig period starting %s: %s\n", start.Display(), name)
			return nil
		})
	},
}

var rigIdentityCmd = &cobra.Command{
	Use:   "identity MOTHERBOARD_ID NAME",
	Short: "Record an interval-form rig identity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		name := args[1]

		from, err := dateFromFlags(cmd)
		if err != nil {
			return err
		}

		return runMutating("SetRigIdentity", func(a *app.App) error {
			identity, err := a.SetRigIdentity(id, name, from)
			if err != nil {
				return err
			}
			fmt.Printf("Rig identity set: %s (from %s)\n", identity.Name, identity.ActiveFrom.Display())
			return nil
		})
	},
}

var rigClearNamesCmd = &cobra.Command{
	Use:   "clear-names",
	Short: "Delete every rig name record",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("this deletes all rig names: re-run with --force to confirm")
		}

		return runMutating("ClearRigNames", func(a *app.App) error {
			if err := a.ClearRigNames(); err != nil {
				return err
			}
			fmt.Println("All rig names deleted.")
			return nil
		})
	},
}

// timeline command
var timelineCmd = &cobra.Command{
	Use:   "timeline PART_ID",
	Short: "Show a part's chronological history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("Timeline")
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.Service().BuildTimeline(id)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		for _, e := range events {
			date := e.Date.Display()
			if date == "" {
				date = "(no date)"
			}
			fmt.Printf("%-10s  %s\n", date, e.Title)
			if e.Content != "" {
				fmt.Printf("            %s\n", e.Content)
			}
			if e.Notes != "" {
				fmt.Printf("            %s\n", e.Notes)
			}
		}
		return nil
	},
}

// bin command
var binCmd = &cobra.Command{
	Use:   "bin",
	Short: "List unconnected parts",
	RunE: func(cmd *cobra.Command, args []string) error {
		typeFilter, _ := cmd.Flags().GetString("type")

		var pt model.PartType
		if typeFilter != "" {
			parsed, err := model.ParsePartType(typeFilter)
			if err != nil {
				return err
			}
			pt = parsed
		}

		a, err := newApp("Bin")
		if err != nil {
			return err
		}
		defer a.Close()

		views, err := a.Service().GetPartsInBin(pt)
		if err != nil {
			return err
		}

		printPartViews(views)
		return nil
	},
}

// brands command
var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List known brands",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Brands")
		if err != nil {
			return err
		}
		defer a.Close()

		brands, err := a.Service().GetUniqueBrands()
		if err != nil {
			return err
		}

		for _, b := range brands {
			fmt.Println(b)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-10s  %s\n",
				op.ID,
				op.Name,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage archived database snapshots",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Upload a fresh database snapshot to the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		if cfg.Archive.Type == "" || cfg.Archive.Type == "none" {
			return fmt.Errorf("no archive configured: set an [archive] section in the config first")
		}

		err = runMutating("Snapshot", func(a *app.App) error {
			return a.Snapshot()
		})
		if err != nil {
			return err
		}
		fmt.Println("Snapshot uploaded to the archive.")
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the local database from the archived snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		passphrase, err := promptPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		path, err := app.RestoreSnapshot(cfg, passphrase)
		if err != nil {
			return err
		}

		fmt.Printf("Database restored to %s\n", path)
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.StoreID)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		migrator, ok := db.(interface{ MigrateUp() error })
		if !ok {
			return fmt.Errorf("database does not support migrations")
		}
		if err := migrator.MigrateUp(); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}

		fmt.Println("Database is up to date.")
		return nil
	},
}

func joinPartTypes() string {
	names := make([]string, len(model.PartTypes))
	for i, t := range model.PartTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	configKeysCmd.AddCommand(configKeysInitCmd)

	// part subcommands
	partCmd.AddCommand(partAddCmd)
	partAddCmd.Flags().String("brand", "", "Manufacturer")
	partAddCmd.Flags().String("model", "", "Model name")
	partAddCmd.Flags().String("type", "", "Part type ("+joinPartTypes()+")")
	partAddCmd.Flags().String("notes", "", "Free-form notes")
	addDateFlags(partAddCmd)
	partAddCmd.MarkFlagRequired("brand")
	partAddCmd.MarkFlagRequired("model")
	partAddCmd.MarkFlagRequired("type")

	partCmd.AddCommand(partListCmd)
	partListCmd.Flags().String("type", "", "Filter by part type")
	partListCmd.Flags().String("status", "", "Filter by status (active, bin, deleted)")
	partListCmd.Flags().String("search", "", "Substring match on brand, model or notes")
	partListCmd.Flags().String("sort", "brand", "Sort column (brand, model, type, acquired, status)")
	partListCmd.Flags().Bool("desc", false, "Sort descending")

	partCmd.AddCommand(partShowCmd)

	partCmd.AddCommand(partEditCmd)
	partEditCmd.Flags().String("brand", "", "Manufacturer")
	partEditCmd.Flags().String("model", "", "Model name")
	partEditCmd.Flags().String("type", "", "Part type")
	partEditCmd.Flags().String("notes", "", "Free-form notes")
	addDateFlags(partEditCmd)

	partCmd.AddCommand(partDeleteCmd)
	partCmd.AddCommand(partRestoreCmd)
	partCmd.AddCommand(partHardDeleteCmd)
	partHardDeleteCmd.Flags().Bool("force", false, "Confirm permanent removal")

	// connect / disconnect / dispose
	connectCmd.Flags().String("notes", "", "Connection notes")
	connectCmd.Flags().Bool("keep-existing", false, "Leave same-slot parts connected instead of displacing them")
	addDateFlags(connectCmd)

	disconnectCmd.Flags().String("notes", "", "Disconnection notes")
	disconnectCmd.Flags().Int64("connection", 0, "Close one connection by id instead of by part")
	addDateFlags(disconnectCmd)

	disposeCmd.Flags().String("reason", "", "Disposal reason (sold, recycled, dead...)")
	disposeCmd.Flags().String("notes", "", "Disposal notes")
	addDateFlags(disposeCmd)
	disposeCmd.MarkFlagRequired("reason")

	// rig subcommands
	rigCmd.AddCommand(rigListCmd)
	rigCmd.AddCommand(rigHistoryCmd)
	rigCmd.AddCommand(rigNameCmd)
	addDateFlags(rigNameCmd)
	rigCmd.AddCommand(rigIdentityCmd)
	addDateFlags(rigIdentityCmd)
	rigCmd.AddCommand(rigClearNamesCmd)
	rigClearNamesCmd.Flags().Bool("force", false, "Confirm deletion of all rig names")

	// bin / history
	binCmd.Flags().String("type", "", "Filter by part type")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	// snapshot subcommands
	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(partCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(disposeCmd)
	rootCmd.AddCommand(rigCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(binCmd)
	rootCmd.AddCommand(brandsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(migrateCmd)
}
