package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"furniture-extractor/adapters"
	"furniture-extractor/internal/types"
)

// VendorSummary reports the outcome of one vendor run
type VendorSummary struct {
	Vendor       string `json:"vendor"`
	VendorName   string `json:"vendor_name"`
	State        State  `json:"state"`
	ListingPaths int    `json:"listing_paths"`
	// ListingFailures counts listing pages that could not be rendered
	ListingFailures int `json:"listing_failures"`
	Discovered      int `json:"discovered"`
	Processed       int `json:"processed"`
	Persisted       int `json:"persisted"`
	Created         int `json:"created"`
	Updated         int `json:"updated"`
	// Skipped counts products dropped, keyed by reason label
	Skipped     map[string]int `json:"skipped"`
	FieldMisses map[string]int `json:"field_misses"`
	ImageErrors int            `json:"image_errors"`
	// Interrupted is set when the run context ended before every product was visited
	Interrupted bool      `json:"interrupted"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// SkippedTotal sums skipped products over every reason
func (s VendorSummary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

func newVendorSummary(vendor, name string) VendorSummary {
	return VendorSummary{
		Vendor:      vendor,
		VendorName:  name,
		State:       StateIdle,
		Skipped:     map[string]int{},
		FieldMisses: map[string]int{},
		StartedAt:   time.Now(),
	}
}

// discoveredProduct is a product URL and the category implied by its listing path
type discoveredProduct struct {
	url             string
	listingCategory string
}

// RunVendor crawls one vendor: it discovers product URLs on every listing path,
// then extracts, normalizes and persists each product in turn. A product failure
// is counted and skipped. Only an authentication failure or an unavailable catalog
// store fails the run.
//
// When ctx ends the run stops visiting new pages; the product in flight finishes
// on its own per-call timeouts.
func (e *Extractor) RunVendor(ctx context.Context, profile types.VendorProfile, maxProducts int) VendorSummary {
	if maxProducts <= 0 {
		maxProducts = e.config.Run.MaxProductsPerListing
	}

	summary := newVendorSummary(profile.ID, profile.Name)
	summary.ListingPaths = len(profile.ListingPaths)
	machine := &stateMachine{state: StateIdle, vendor: profile.ID, logger: e.logger}
	logger := e.logger.WithField("vendor", profile.ID)

	e.metrics.VendorRunStarted()
	defer e.metrics.VendorRunFinished()

	move := func(state State) {
		if err := machine.to(state); err != nil {
			logger.Errorf("%v", err)
		}
	}
	finish := func(state State, err error) VendorSummary {
		move(state)
		summary.State = machine.state
		if err != nil {
			summary.Error = err.Error()
		}
		summary.FinishedAt = time.Now()
		e.metrics.IncVendorRun(profile.ID, summary.State)

		fields := logrus.Fields{
			"state":      summary.State,
			"discovered": summary.Discovered,
			"persisted":  summary.Persisted,
			"skipped":    summary.SkippedTotal(),
		}
		if err != nil {
			fields["reason"] = types.ReasonLabel(err)
			logger.WithFields(fields).Errorf("Vendor run failed in %v: %v", summary.FinishedAt.Sub(summary.StartedAt), err)
		} else {
			logger.WithFields(fields).Infof("Vendor run completed in %v", summary.FinishedAt.Sub(summary.StartedAt))
		}
		return summary
	}

	logger.Infof("Starting vendor run at %v", summary.StartedAt.Format("15:04:05.000"))

	// Work on pages already started outlives ctx; the per-call timeouts bound it
	work := context.WithoutCancel(ctx)

	session, err := e.openSession(work, profile)
	if err != nil {
		return finish(StateFailed, err)
	}
	defer session.Close()

	// Step 1: discover product URLs on every listing path
	move(StateDiscovering)
	products := e.discover(ctx, work, session, profile, maxProducts, &summary)
	summary.Discovered = len(products)
	logger.Infof("Found %d product URLs", len(products))

	// Step 2: extract, normalize and persist each product
	move(StateExtracting)
	for i, product := range products {
		if ctx.Err() != nil {
			summary.Interrupted = true
			logger.Warnf("Run canceled after %d/%d products", i, len(products))
			break
		}
		move(StateExtracting)

		plog := logger.WithField("url", product.url)
		plog.Debugf("Processing product %d/%d", i+1, len(products))
		summary.Processed++

		extracted, err := e.extractProduct(work, session, profile, product.url)
		if err != nil {
			e.skip(&summary, plog, err)
			continue
		}
		for _, field := range extracted.raw.Misses {
			summary.FieldMisses[field]++
		}
		summary.ImageErrors += len(extracted.images.Errors)

		move(StateNormalizing)
		res, err := e.persistProduct(work, extracted, product.listingCategory)
		if err != nil {
			var persistErr types.PersistenceError
			if errors.As(err, &persistErr) {
				if pingErr := e.store.Ping(work); pingErr != nil {
					e.skip(&summary, plog, err)
					return finish(StateFailed, fmt.Errorf("catalog store unavailable: %w", pingErr))
				}
			}
			e.skip(&summary, plog, err)
			continue
		}

		summary.Persisted++
		if res.Created {
			summary.Created++
			e.metrics.IncProduct(profile.ID, "created")
		} else {
			summary.Updated++
			e.metrics.IncProduct(profile.ID, "updated")
		}
		plog.Debugf("Persisted %q (created=%t)", res.Record.Name, res.Created)
	}

	return finish(StateComplete, nil)
}

// discover walks the listing paths and returns the de-duplicated product URLs in
// discovery order, at most maxProducts per listing path
func (e *Extractor) discover(ctx, work context.Context, session types.Session, profile types.VendorProfile, maxProducts int, summary *VendorSummary) []discoveredProduct {
	logger := e.logger.WithField("vendor", profile.ID)

	var products []discoveredProduct
	seen := map[string]bool{}

	for _, path := range profile.ListingPaths {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		listingURL, err := adapters.ListingURL(profile, path)
		if err != nil {
			summary.ListingFailures++
			logger.Warnf("Skipping listing path %q: %v", path, err)
			continue
		}

		html, err := e.load(work, session, listingURL)
		if err != nil {
			summary.ListingFailures++
			logger.WithFields(logrus.Fields{"url": listingURL, "reason": types.ReasonLabel(err)}).
				Warnf("Failed to render listing page: %v", err)
			continue
		}

		doc, err := adapters.ParseHTML(html)
		if err != nil {
			summary.ListingFailures++
			logger.WithField("url", listingURL).Warnf("Failed to parse listing page: %v", err)
			continue
		}

		urls, err := adapters.DiscoverProductURLs(doc, profile, maxProducts)
		if err != nil {
			summary.ListingFailures++
			logger.WithField("url", listingURL).Warnf("Failed to discover product links: %v", err)
			continue
		}
		logger.WithField("url", listingURL).Debugf("Found %d product links", len(urls))

		category := profile.ListingCategories[path]
		for _, u := range urls {
			if seen[u] {
				continue
			}
			seen[u] = true
			products = append(products, discoveredProduct{url: u, listingCategory: category})
		}
	}
	return products
}

// skip counts a dropped product under its reason label
func (e *Extractor) skip(summary *VendorSummary, logger types.Logger, err error) {
	reason := types.ReasonLabel(err)
	summary.Skipped[reason]++
	e.metrics.IncSkipped(reason)
	e.metrics.IncProduct(summary.Vendor, "skipped")
	logger.WithField("reason", reason).Warnf("Skipping product: %v", err)
}
