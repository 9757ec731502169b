package main

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"furniture-extractor/adapters"
	"furniture-extractor/utils"
)

var flagSampleLinks int

var linksCmd = &cobra.Command{
	Use:   "links <vendor-id>",
	Short: "Render a vendor's listing pages and show the product links discovery finds",
	Long: `Links runs link discovery only. It renders each listing path of the vendor,
prints how many anchors the page holds, a sample of them and the product URLs that
pass the vendor's product path patterns. Nothing is written to the catalog.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		registry := adapters.NewRegistry(cli.config.Vendors)
		profile, err := registry.Get(args[0])
		if err != nil {
			return err
		}

		session, err := utils.NewSessionFactory(cli.config, cli.logger)(ctx, profile)
		if err != nil {
			return err
		}
		defer session.Close()

		for _, path := range profile.ListingPaths {
			listingURL, err := adapters.ListingURL(profile, path)
			if err != nil {
				return err
			}
			fmt.Printf("=== %s ===\n", listingURL)

			html, err := session.Load(ctx, listingURL)
			if err != nil {
				cli.logger.Warnf("Failed to get listing page: %v", err)
				continue
			}
			doc, err := adapters.ParseHTML(html)
			if err != nil {
				cli.logger.Warnf("Failed to parse HTML: %v", err)
				continue
			}

			anchors := doc.Find("a[href]")
			fmt.Printf("Total links found: %d\n", anchors.Length())

			sample := newTable()
			sample.SetTitle("Sample of all links")
			sample.AppendHeader(table.Row{"#", "href", "text"})
			count := 0
			anchors.EachWithBreak(func(i int, s *goquery.Selection) bool {
				href, _ := s.Attr("href")
				if href == "" || len(href) >= 100 {
					return true
				}
				sample.AppendRow(table.Row{i + 1, href, strings.TrimSpace(s.Text())})
				count++
				return count < flagSampleLinks
			})
			sample.Render()

			urls, err := adapters.DiscoverProductURLs(doc, profile, cli.config.Run.MaxProductsPerListing)
			if err != nil {
				cli.logger.Warnf("Failed to discover product links: %v", err)
				continue
			}
			products := newTable()
			products.SetTitle(fmt.Sprintf("Product links (%d)", len(urls)))
			for i, u := range urls {
				products.AppendRow(table.Row{i + 1, u})
			}
			products.Render()
		}
		return nil
	},
}

func init() {
	linksCmd.Flags().IntVar(&flagSampleLinks, "sample", 10, "Number of raw links to print per listing page")
	rootCmd.AddCommand(linksCmd)
}
