package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fakhiuBack/internal/backend"
	"fakhiuBack/internal/listing"
	"fakhiuBack/internal/models"
	"fakhiuBack/internal/store"
)

var browseOpts struct {
	token    string
	tab      string
	sort     string
	page     int
	search   string
	country  string
	priceMin string
	priceMax string
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Fetch the listings once and print one page",
	Long: `browse loads both collections from the backend with the given token,
runs the filter, sort and pagination pipeline and prints the page.`,
	RunE: runBrowse,
}

func init() {
	f := browseCmd.Flags()
	f.StringVar(&browseOpts.token, "token", os.Getenv("API_TOKEN"), "Bearer token (or set API_TOKEN)")
	f.StringVar(&browseOpts.tab, "tab", string(models.TabRequests), "requests or offers")
	f.StringVar(&browseOpts.sort, "sort", string(models.SortNewest), "newest, lowestPrice or nearestDate")
	f.IntVar(&browseOpts.page, "page", 1, "Page number, starting at 1")
	f.StringVar(&browseOpts.search, "search", "", "Substring of route, description or title")
	f.StringVar(&browseOpts.country, "country", "", "Exact route location")
	f.StringVar(&browseOpts.priceMin, "price-min", "", "Lowest headline price")
	f.StringVar(&browseOpts.priceMax, "price-max", "", "Highest headline price")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	tab, ok := models.ParseTab(browseOpts.tab)
	if !ok {
		return fmt.Errorf("unknown tab %q", browseOpts.tab)
	}
	q := models.Query{
		Tab:  tab,
		Sort: models.ParseSortKey(browseOpts.sort),
		Page: browseOpts.page,
		Criteria: models.FilterCriteria{
			Search:  browseOpts.search,
			Country: browseOpts.country,
			PriceRange: models.Range{
				Min: models.ParseBound(browseOpts.priceMin),
				Max: models.ParseBound(browseOpts.priceMax),
			},
		},
	}
	if err := q.Criteria.Validate(); err != nil {
		return err
	}

	client := backend.NewClient(&http.Client{Timeout: cfg.BackendTimeout()}, cfg.Backend.BaseURL)
	snapshots := store.New(client, nil, logger.Sugar())
	snap, err := snapshots.Get(cmd.Context(), browseOpts.token)
	if err != nil {
		return err
	}

	view := listing.Run(snap, q).PageView(snap, nil)
	return printPage(cmd.OutOrStdout(), view)
}

func printPage(out io.Writer, view models.PageView) error {
	fmt.Fprintf(out, "%s, sorted by %s: page %d of %d (%d of %d listings)\n\n",
		view.Tab, view.Sort, view.Page, view.PageCount, view.Total, view.SourceTotal)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tFROM\tTO\tFLIGHT\tPRICE")
	for _, c := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.DisplayTitle, c.FromLabel, c.ToLabel, c.FlightDate, c.PriceLabel)
	}
	return tw.Flush()
}
