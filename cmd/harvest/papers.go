package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/harvest/internal/browse"
	"github.com/pdiddy/harvest/internal/export"
	"github.com/pdiddy/harvest/internal/grid"
	"github.com/pdiddy/harvest/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List, filter, search, and delete research papers",
}

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers from the server, filtered and paginated server-side",
	RunE:  runPapersList,
}

var papersFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a saved collection of papers locally",
	Long: `Filter reads papers exported with "papers list --json" (or any JSON array of
papers) and applies the date range, methodology, keyword, and citation
filters locally. Criteria can be loaded from and saved to a YAML file.`,
	RunE: runPapersFilter,
}

var papersGetCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "Show one paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runPapersGet,
}

var papersDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete papers one at a time",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPapersDelete,
}

var papersSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the repository",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPapersSearch,
}

var papersTrendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending papers",
	RunE:  runPapersTrending,
}

var papersRelatedCmd = &cobra.Command{
	Use:   "related <slug>",
	Short: "List papers related to a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runPapersRelated,
}

func init() {
	f := papersListCmd.Flags()
	f.String("q", "", "free-text search")
	f.StringSlice("keyword", nil, "keyword the papers must carry (repeatable)")
	f.StringSlice("region", nil, "region keyword (repeatable)")
	f.StringSlice("author", nil, "author name (repeatable)")
	f.StringSlice("methodology", nil, "methodology type: qualitative, quantitative, mixed (repeatable)")
	f.Int("year-from", 0, "earliest publication year")
	f.Int("year-to", 0, "latest publication year")
	f.Int("min-citations", 0, "minimum citation count")
	f.String("journal", "", "journal name")
	f.String("sort", "", "ordering: relevance, date_newest, date_oldest, citations_high, citations_low, title_asc, title_desc")
	f.Int("page", 1, "page number")
	f.String("format", "table", "output format: table, json, csl")
	f.Bool("json", false, "shorthand for --format json")

	f = papersFilterCmd.Flags()
	f.String("input", "", "JSON file of papers (required)")
	f.StringSlice("keyword", nil, "keyword the papers must carry (repeatable)")
	f.StringSlice("methodology", nil, "methodology type (repeatable)")
	f.String("from", "", "publication date range start (YYYY-MM-DD)")
	f.String("to", "", "publication date range end (YYYY-MM-DD)")
	f.Int("min-citations", 0, "minimum citation count")
	f.String("criteria", "", "load criteria from a YAML file")
	f.String("save-criteria", "", "save the effective criteria to a YAML file")
	f.Int("page", 1, "page number")
	f.Int("page-size", 0, "papers per page (default from browse.page_size)")
	f.String("format", "table", "output format: table, json, csl")
	papersFilterCmd.MarkFlagRequired("input")

	papersGetCmd.Flags().Bool("json", false, "output as JSON")
	papersSearchCmd.Flags().String("type", "", "fields to search, e.g. title or author")
	papersSearchCmd.Flags().String("format", "table", "output format: table, json, csl")
	papersTrendingCmd.Flags().Int("limit", 10, "number of papers")
	papersTrendingCmd.Flags().String("format", "table", "output format: table, json, csl")
	papersRelatedCmd.Flags().String("format", "table", "output format: table, json, csl")

	papersCmd.AddCommand(papersListCmd, papersFilterCmd, papersGetCmd, papersDeleteCmd,
		papersSearchCmd, papersTrendingCmd, papersRelatedCmd)
	rootCmd.AddCommand(papersCmd)
}

func outputFormat(cmd *cobra.Command) (export.Format, error) {
	if asJSON(cmd) {
		return export.FormatJSON, nil
	}
	s, _ := cmd.Flags().GetString("format")
	return export.ParseFormat(s)
}

func parseMethodologies(vals []string) ([]types.MethodologyType, error) {
	out := make([]types.MethodologyType, 0, len(vals))
	for _, v := range vals {
		m, err := types.ParseMethodologyType(v)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func requestContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// Leave room for retries on top of a single request timeout.
	return context.WithTimeout(cmd.Context(), 4*timeout)
}

func runPapersList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	q, _ := flags.GetString("q")
	keywords, _ := flags.GetStringSlice("keyword")
	regions, _ := flags.GetStringSlice("region")
	authors, _ := flags.GetStringSlice("author")
	methodNames, _ := flags.GetStringSlice("methodology")
	yearFrom, _ := flags.GetInt("year-from")
	yearTo, _ := flags.GetInt("year-to")
	minCitations, _ := flags.GetInt("min-citations")
	journal, _ := flags.GetString("journal")
	sortBy, _ := flags.GetString("sort")
	page, _ := flags.GetInt("page")

	methods, err := parseMethodologies(methodNames)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	remote := browse.NewRemote(newClient(cfg.API), browse.RemoteOptions{
		PageSize: cfg.Browse.RemotePageSize,
		Debounce: cfg.Browse.Debounce,
		Logger:   logger.Named("browse"),
	})
	defer remote.Close()

	remote.ApplyOptions(browse.Selection{
		Keywords:         keywords,
		Regions:          regions,
		MethodologyTypes: methods,
		YearFrom:         yearFrom,
		YearTo:           yearTo,
		MinCitations:     minCitations,
	})
	if len(authors) > 0 {
		remote.SetAuthors(authors)
	}
	if journal != "" {
		remote.SetJournal(journal)
	}
	if sortBy != "" {
		remote.SetSort(sortBy)
	}
	if q != "" {
		remote.SetSearchText(q)
		remote.FlushSearch()
	}
	if page > 1 {
		remote.SetPage(page)
	}

	st, err := remote.Wait(ctx)
	if err != nil {
		return userError(err)
	}
	if st.Err != nil {
		return userError(st.Err)
	}
	return export.Write(os.Stdout, format, grid.ServerWindow(st.Papers, st.Page, st.Query.PageSize, st.Count))
}

// readPapers loads a JSON array of papers, or a page object with a
// results array.
func readPapers(path string) ([]types.ResearchPaper, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var papers []types.ResearchPaper
	if err := json.Unmarshal(data, &papers); err == nil {
		return papers, nil
	}
	var page types.PaperPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("parsing %s: want a JSON array of papers: %w", path, err)
	}
	return page.Results, nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func runPapersFilter(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	input, _ := flags.GetString("input")
	criteriaFile, _ := flags.GetString("criteria")
	saveTo, _ := flags.GetString("save-criteria")
	page, _ := flags.GetInt("page")
	pageSize, _ := flags.GetInt("page-size")
	if pageSize <= 0 {
		pageSize = loadConfig().Browse.PageSize
	}

	papers, err := readPapers(input)
	if err != nil {
		return err
	}

	local := browse.NewLocal(papers, pageSize, nil)
	if criteriaFile != "" {
		sel, err := browse.ReadCriteriaFile(criteriaFile)
		if err != nil {
			return err
		}
		local.SetCriteria(sel)
	}

	if flags.Changed("from") || flags.Changed("to") {
		from, _ := flags.GetString("from")
		to, _ := flags.GetString("to")
		start, err := parseDay(from)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		end, err := parseDay(to)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		local.SetDateRange(types.DateRange{Start: start, End: end})
	}
	if flags.Changed("methodology") {
		names, _ := flags.GetStringSlice("methodology")
		methods, err := parseMethodologies(names)
		if err != nil {
			return err
		}
		local.SetMethodologies(methods)
	}
	if flags.Changed("keyword") {
		keywords, _ := flags.GetStringSlice("keyword")
		local.SetKeywords(keywords)
	}
	if flags.Changed("min-citations") {
		n, _ := flags.GetInt("min-citations")
		local.SetMinCitations(n)
	}
	local.SetPage(page)

	st := local.State()
	if saveTo != "" {
		if err := browse.WriteCriteriaFile(saveTo, st.Criteria); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved criteria to %s\n", saveTo)
	}
	return export.Write(os.Stdout, format, st.Window)
}

func runPapersGet(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	p, err := newClient(cfg.API).GetPaper(ctx, args[0])
	if err != nil {
		return userError(err)
	}
	if asJSON(cmd) {
		return export.WriteJSON(os.Stdout, p)
	}
	writePaperDetail(os.Stdout, p)
	return nil
}

func writePaperDetail(w io.Writer, p types.ResearchPaper) {
	fmt.Fprintf(w, "%s\n\n", p.Title)
	fmt.Fprintf(w, "Authors:      %s\n", strings.Join(p.AuthorNames(), ", "))
	fmt.Fprintf(w, "Published:    %s\n", p.Date())
	fmt.Fprintf(w, "Journal:      %s\n", p.Journal)
	fmt.Fprintf(w, "Methodology:  %s\n", p.MethodologyType.Label())
	fmt.Fprintf(w, "Citations:    %d (%s)\n", p.CitationCount, p.CitationTrend)
	fmt.Fprintf(w, "Keywords:     %s\n", strings.Join(p.KeywordNames(), ", "))
	if p.DOI != "" {
		fmt.Fprintf(w, "DOI:          %s\n", p.DOI)
	}
	if p.DownloadURL != "" {
		fmt.Fprintf(w, "Download:     %s\n", p.DownloadURL)
	}
	if p.Abstract != "" {
		fmt.Fprintf(w, "\n%s\n", p.Abstract)
	}
}

func runPapersDelete(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	sum := newClient(cfg.API).DeletePapers(ctx, args)
	for _, f := range sum.Errors {
		fmt.Fprintf(os.Stderr, "failed  %s: %v\n", f.ID, userError(f.Err))
	}
	fmt.Printf("Deleted %d paper(s), %d failed\n", sum.Deleted, sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d paper(s) could not be deleted", sum.Failed)
	}
	return nil
}

// writeList renders a flat list of papers as a single page.
func writeList(cmd *cobra.Command, papers []types.ResearchPaper) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	return export.Write(os.Stdout, format, grid.Paginate(papers, 1, max(len(papers), 1)))
}

func runPapersSearch(cmd *cobra.Command, args []string) error {
	searchType, _ := cmd.Flags().GetString("type")
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	papers, err := newClient(cfg.API).SearchPapers(ctx, strings.Join(args, " "), searchType)
	if err != nil {
		return userError(err)
	}
	return writeList(cmd, papers)
}

func runPapersTrending(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	papers, err := newClient(cfg.API).TrendingPapers(ctx, limit)
	if err != nil {
		return userError(err)
	}
	return writeList(cmd, papers)
}

func runPapersRelated(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	papers, err := newClient(cfg.API).RelatedPapers(ctx, args[0])
	if err != nil {
		return userError(err)
	}
	return writeList(cmd, papers)
}
