package extractor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"furniture-extractor/internal/types"
)

const (
	defaultRunHistory = 100
	runHistoryTTL     = 24 * time.Hour
)

// Run statuses
const (
	RunRunning  = "running"
	RunFinished = "finished"
)

// RunSummary aggregates the vendor summaries of one run
type RunSummary struct {
	RunID      string          `json:"run_id"`
	Status     string          `json:"status"`
	VendorIDs  []string        `json:"vendor_ids"`
	Vendors    []VendorSummary `json:"vendors"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at,omitempty"`
}

// Attempted returns the number of vendors with a summary
func (r RunSummary) Attempted() int {
	return len(r.Vendors)
}

// Discovered sums discovered products over every vendor
func (r RunSummary) Discovered() int {
	total := 0
	for _, v := range r.Vendors {
		total += v.Discovered
	}
	return total
}

// Persisted sums persisted products over every vendor
func (r RunSummary) Persisted() int {
	total := 0
	for _, v := range r.Vendors {
		total += v.Persisted
	}
	return total
}

// Skipped merges the skip reason counts of every vendor
func (r RunSummary) Skipped() map[string]int {
	merged := map[string]int{}
	for _, v := range r.Vendors {
		for reason, n := range v.Skipped {
			merged[reason] += n
		}
	}
	return merged
}

// Failed reports whether any vendor run ended FAILED
func (r RunSummary) Failed() bool {
	for _, v := range r.Vendors {
		if v.State == StateFailed {
			return true
		}
	}
	return false
}

// Ack acknowledges an asynchronously started run
type Ack struct {
	Accepted    bool   `json:"accepted"`
	RunID       string `json:"run_id"`
	VendorCount int    `json:"vendor_count"`
}

// Run runs the named vendors and blocks until every vendor run finishes. An empty
// list runs every registered vendor. Vendor runs execute concurrently up to the
// configured limit, and the whole run is bounded by the configured run timeout.
func (e *Extractor) Run(ctx context.Context, vendorIDs []string, maxProducts int) RunSummary {
	ids := e.resolveVendorIDs(vendorIDs)
	runID := uuid.NewString()
	e.runs.start(runID, ids)
	e.execute(ctx, runID, ids, maxProducts)
	summary, _ := e.runs.Get(runID)
	return summary
}

// Trigger starts a run in the background and returns at once. Progress and the
// final summary are observed through Runs().Get(runID).
func (e *Extractor) Trigger(vendorIDs []string, maxProducts int) (Ack, error) {
	ids := e.resolveVendorIDs(vendorIDs)
	if len(ids) == 0 {
		return Ack{}, fmt.Errorf("%w: no vendors to run", types.ErrUnknownVendor)
	}

	e.bgMu.Lock()
	defer e.bgMu.Unlock()
	if e.bgCtx.Err() != nil {
		return Ack{}, errors.New("extractor is closed")
	}

	runID := uuid.NewString()
	e.runs.start(runID, ids)

	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		e.execute(e.bgCtx, runID, ids, maxProducts)
	}()

	e.logger.WithField("run_id", runID).Infof("Run accepted for %d vendors", len(ids))
	return Ack{Accepted: true, RunID: runID, VendorCount: len(ids)}, nil
}

func (e *Extractor) resolveVendorIDs(vendorIDs []string) []string {
	var ids []string
	seen := map[string]bool{}
	for _, id := range vendorIDs {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return e.registry.IDs()
	}
	return ids
}

func (e *Extractor) execute(ctx context.Context, runID string, ids []string, maxProducts int) {
	if e.config.Run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Run.Timeout)
		defer cancel()
	}

	logger := e.logger.WithField("run_id", runID)
	logger.Infof("Starting extraction for vendors: %v", ids)

	g := new(errgroup.Group)
	g.SetLimit(max(1, e.config.Run.MaxConcurrentVendors))

	for _, id := range ids {
		profile, err := e.registry.Get(id)
		if err != nil {
			summary := newVendorSummary(id, "")
			summary.State = StateFailed
			summary.Error = err.Error()
			summary.FinishedAt = summary.StartedAt
			e.metrics.IncVendorRun(id, StateFailed)
			logger.WithFields(logrus.Fields{"vendor": id, "reason": types.ReasonLabel(err)}).Warn("Unknown vendor")
			e.runs.record(runID, summary)
			continue
		}

		g.Go(func() error {
			e.runs.record(runID, e.RunVendor(ctx, profile, maxProducts))
			return nil
		})
	}
	_ = g.Wait()

	e.runs.finish(runID)
	if summary, ok := e.runs.Get(runID); ok {
		logger.Infof("Run finished: %d vendors, %d discovered, %d persisted",
			summary.Attempted(), summary.Discovered(), summary.Persisted())
	}
}

// RunRegistry keeps the summaries of recent runs
type RunRegistry struct {
	mu   sync.Mutex
	runs *expirable.LRU[string, *RunSummary]
}

// NewRunRegistry creates a registry holding at most size runs
func NewRunRegistry(size int) *RunRegistry {
	return &RunRegistry{
		runs: expirable.NewLRU[string, *RunSummary](max(1, size), nil, runHistoryTTL),
	}
}

// Get returns a snapshot of the run
func (r *RunRegistry) Get(runID string) (RunSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs.Get(runID)
	if !ok {
		return RunSummary{}, false
	}
	snapshot := *run
	snapshot.VendorIDs = append([]string(nil), run.VendorIDs...)
	snapshot.Vendors = append([]VendorSummary(nil), run.Vendors...)
	return snapshot, true
}

// Lookup is Get returning ErrRunNotFound for unknown ids
func (r *RunRegistry) Lookup(runID string) (RunSummary, error) {
	summary, ok := r.Get(runID)
	if !ok {
		return RunSummary{}, fmt.Errorf("%w: %s", types.ErrRunNotFound, runID)
	}
	return summary, nil
}

func (r *RunRegistry) start(runID string, ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs.Add(runID, &RunSummary{
		RunID:     runID,
		Status:    RunRunning,
		VendorIDs: ids,
		Vendors:   []VendorSummary{},
		StartedAt: time.Now(),
	})
}

func (r *RunRegistry) record(runID string, summary VendorSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs.Get(runID); ok {
		run.Vendors = append(run.Vendors, summary)
	}
}

func (r *RunRegistry) finish(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs.Get(runID); ok {
		run.Status = RunFinished
		slices.SortFunc(run.Vendors, func(a, b VendorSummary) int {
			return strings.Compare(a.Vendor, b.Vendor)
		})
		run.FinishedAt = time.Now()
	}
}
