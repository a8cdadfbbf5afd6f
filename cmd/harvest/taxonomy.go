package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/harvest/internal/export"
	"github.com/pdiddy/harvest/internal/filter"
	"github.com/pdiddy/harvest/pkg/types"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [name]",
	Short: "List keywords, optionally matching a name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKeywords,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List keyword categories and their keywords",
	RunE:  runCategories,
}

var authorsCmd = &cobra.Command{
	Use:   "authors [name]",
	Short: "List authors, optionally matching a name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthors,
}

var filterOptionsCmd = &cobra.Command{
	Use:   "filter-options",
	Short: "Show the methodology types, years, and keywords available for filtering",
	RunE:  runFilterOptions,
}

func init() {
	for _, c := range []*cobra.Command{keywordsCmd, categoriesCmd, authorsCmd, filterOptionsCmd} {
		c.Flags().Bool("json", false, "output as JSON")
		rootCmd.AddCommand(c)
	}
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func runKeywords(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	kws, err := newClient(cfg.API).FetchKeywords(ctx, firstArg(args))
	if err != nil {
		return userError(err)
	}
	if asJSON(cmd) {
		return export.WriteJSON(os.Stdout, kws)
	}
	for _, k := range kws {
		fmt.Println(filter.CapitalCase(k.Name))
	}
	return nil
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	cats, err := newClient(cfg.API).FetchKeywordCategories(ctx)
	if err != nil {
		return userError(err)
	}
	if asJSON(cmd) {
		return export.WriteJSON(os.Stdout, cats)
	}
	for _, c := range cats {
		fmt.Printf("%s (%d)\n", c.Name, len(c.Keywords))
		if c.Description != "" {
			fmt.Printf("  %s\n", c.Description)
		}
		fmt.Printf("  %s\n", strings.Join(keywordNames(c.Keywords), ", "))
	}
	return nil
}

func keywordNames(kws []types.Keyword) []string {
	out := make([]string, len(kws))
	for i, k := range kws {
		out[i] = filter.CapitalCase(k.Name)
	}
	return out
}

func runAuthors(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	authors, err := newClient(cfg.API).FetchAuthors(ctx, firstArg(args))
	if err != nil {
		return userError(err)
	}
	if asJSON(cmd) {
		return export.WriteJSON(os.Stdout, authors)
	}
	for _, a := range authors {
		if a.Affiliation != "" {
			fmt.Printf("%s (%s)\n", a.Name, a.Affiliation)
			continue
		}
		fmt.Println(a.Name)
	}
	return nil
}

func runFilterOptions(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	opts, err := newClient(cfg.API).FetchFilterOptions(ctx)
	if err != nil {
		return userError(err)
	}
	if asJSON(cmd) {
		return export.WriteJSON(os.Stdout, opts)
	}

	fmt.Printf("Papers:        %d\n", opts.Stats.TotalPapers)
	fmt.Printf("Methodologies: %s\n", strings.Join(opts.MethodologyTypes, ", "))
	if opts.YearRange.Min > 0 {
		fmt.Printf("Years:         %d-%d\n", opts.YearRange.Min, opts.YearRange.Max)
	}
	fmt.Printf("Regions:       %s\n", strings.Join(keywordNames(opts.RegionKeywords), ", "))
	fmt.Printf("Keywords:      %s\n", strings.Join(keywordNames(opts.GeneralKeywords), ", "))
	for _, c := range opts.KeywordCategories {
		fmt.Printf("  %s: %s\n", c.Name, strings.Join(keywordNames(c.Keywords), ", "))
	}
	return nil
}
