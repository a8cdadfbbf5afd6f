package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/harvest/internal/export"
	"github.com/pdiddy/harvest/internal/saved"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved papers",
	Long: `Saved keeps a list of bookmarked papers per user. Without saved.user_id a
guest id is generated once and reused.`,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved papers",
	RunE:  runSavedList,
}

var savedAddCmd = &cobra.Command{
	Use:   "add <slug>...",
	Short: "Save papers, looked up on the server by slug",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSavedAdd,
}

var savedToggleCmd = &cobra.Command{
	Use:   "toggle <slug>",
	Short: "Save a paper, or remove it if already saved",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedToggle,
}

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove saved papers by id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSavedRemove,
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every saved paper",
	RunE:  runSavedClear,
}

func init() {
	savedListCmd.Flags().Bool("json", false, "output as JSON")

	savedCmd.AddCommand(savedListCmd, savedAddCmd, savedToggleCmd, savedRemoveCmd, savedClearCmd)
	rootCmd.AddCommand(savedCmd)
}

func openSaved() (saved.Store, error) {
	return saved.Open(loadConfig().Saved, logger.Named("saved"))
}

func runSavedList(cmd *cobra.Command, args []string) error {
	store, err := openSaved()
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON(cmd) {
		return export.WriteJSON(os.Stdout, list)
	}
	if len(list) == 0 {
		fmt.Println("No saved papers.")
		return nil
	}
	for _, p := range list {
		fmt.Printf("%-10s  %-4s  %s  (%s)\n", p.ID, p.PublicationYear, p.Title, strings.Join(p.Authors, ", "))
	}
	fmt.Printf("\n%d saved paper(s)\n", len(list))
	return nil
}

func runSavedAdd(cmd *cobra.Command, args []string) error {
	store, err := openSaved()
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()
	client := newClient(cfg.API)

	for _, slug := range args {
		p, err := client.GetPaper(ctx, slug)
		if err != nil {
			return userError(err)
		}
		if err := store.Save(ctx, saved.FromPaper(p)); err != nil {
			return err
		}
		fmt.Printf("saved   %s\n", p.Title)
	}
	return nil
}

func runSavedToggle(cmd *cobra.Command, args []string) error {
	store, err := openSaved()
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	p, err := newClient(cfg.API).GetPaper(ctx, args[0])
	if err != nil {
		return userError(err)
	}
	now, err := store.Toggle(ctx, saved.FromPaper(p))
	if err != nil {
		return err
	}
	if now {
		fmt.Printf("saved   %s\n", p.Title)
	} else {
		fmt.Printf("removed %s\n", p.Title)
	}
	return nil
}

func runSavedRemove(cmd *cobra.Command, args []string) error {
	store, err := openSaved()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, id := range args {
		if err := store.Remove(cmd.Context(), id); err != nil {
			return err
		}
	}
	fmt.Printf("Removed %d paper(s)\n", len(args))
	return nil
}

func runSavedClear(cmd *cobra.Command, args []string) error {
	store, err := openSaved()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Cleared saved papers.")
	return nil
}
