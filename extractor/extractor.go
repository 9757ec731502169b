// Package extractor runs vendors through discovery, extraction, image
// acquisition, classification and persistence.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"furniture-extractor/adapters"
	"furniture-extractor/catalog"
	"furniture-extractor/classify"
	"furniture-extractor/images"
	"furniture-extractor/internal/types"
	"furniture-extractor/utils"
)

// Extractor wires the pipeline components together
type Extractor struct {
	config      *types.Config
	registry    *adapters.Registry
	sessions    types.SessionFactory
	fields      *adapters.FieldExtractor
	images      *images.Acquirer
	store       catalog.Store
	credentials types.CredentialSource
	metrics     *Metrics
	runs        *RunRegistry
	logger      types.Logger

	// background runs started by Trigger
	bgMu     sync.Mutex
	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
}

// NewExtractor creates an extractor. Sessions are opened through utils.NewSessionFactory
// unless replaced with SetSessionFactory.
func NewExtractor(config *types.Config, registry *adapters.Registry, store catalog.Store, credentials types.CredentialSource, logger types.Logger) *Extractor {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	return &Extractor{
		config:      config,
		registry:    registry,
		sessions:    utils.NewSessionFactory(config, logger),
		fields:      adapters.NewFieldExtractor(registry, logger),
		images:      images.NewAcquirer(config, logger),
		store:       store,
		credentials: credentials,
		metrics:     NewMetrics(),
		runs:        NewRunRegistry(defaultRunHistory),
		logger:      logger,
		bgCtx:       bgCtx,
		bgCancel:    bgCancel,
	}
}

// SetSessionFactory replaces the factory used to open render sessions
func (e *Extractor) SetSessionFactory(factory types.SessionFactory) {
	e.sessions = factory
}

// Registry returns the vendor profile registry
func (e *Extractor) Registry() *adapters.Registry {
	return e.registry
}

// Metrics returns the pipeline metrics
func (e *Extractor) Metrics() *Metrics {
	return e.metrics
}

// Runs returns the registry of triggered runs
func (e *Extractor) Runs() *RunRegistry {
	return e.runs
}

// Vendors returns every registered vendor profile
func (e *Extractor) Vendors() []types.VendorProfile {
	return e.registry.All()
}

// RunStatus returns the summary of a triggered run
func (e *Extractor) RunStatus(runID string) (RunSummary, error) {
	return e.runs.Lookup(runID)
}

// Ping checks the catalog store
func (e *Extractor) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// Close cancels background runs and waits for them to finish
func (e *Extractor) Close() {
	e.bgMu.Lock()
	e.bgCancel()
	e.bgMu.Unlock()
	e.bg.Wait()
}

// Ingest runs a single product page through extraction, image acquisition,
// classification and normalization, and persists the result. Unknown domains are
// extracted with the generic profile.
func (e *Extractor) Ingest(ctx context.Context, productURL string) (*types.ProductRecord, error) {
	profile, err := e.registry.ProfileForURL(productURL)
	if err != nil {
		return nil, err
	}
	logger := e.logger.WithFields(logrus.Fields{"vendor": profile.ID, "url": productURL})

	session, err := e.openSession(ctx, profile)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	product, err := e.extractProduct(ctx, session, profile, productURL)
	if err != nil {
		logger.WithField("reason", types.ReasonLabel(err)).Warnf("Ingest failed: %v", err)
		return nil, err
	}

	res, err := e.persistProduct(ctx, product, "")
	var persistErr types.PersistenceError
	if errors.As(err, &persistErr) {
		if pingErr := e.store.Ping(ctx); pingErr != nil {
			err = fmt.Errorf("%w: %v", pingErr, err)
		}
	}
	if err != nil {
		logger.WithField("reason", types.ReasonLabel(err)).Warnf("Ingest failed: %v", err)
		return nil, err
	}
	logger.Infof("Ingested %q (created=%t)", res.Record.Name, res.Created)
	return res.Record, nil
}

// openSession opens a render session for profile and logs in when the profile
// declares a login form and credentials are available
func (e *Extractor) openSession(ctx context.Context, profile types.VendorProfile) (types.Session, error) {
	session, err := e.sessions(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to open session for %s: %w", profile.ID, err)
	}

	if profile.Login == nil {
		return session, nil
	}
	if e.credentials == nil {
		e.logger.WithField("vendor", profile.ID).Warn("No credential source configured, continuing without login")
		return session, nil
	}

	cred, ok, err := e.credentials.Lookup(ctx, profile.ID)
	if err != nil {
		session.Close()
		return nil, types.AuthError{Vendor: profile.ID, Err: fmt.Errorf("credential lookup: %w", err)}
	}
	if !ok {
		e.logger.WithField("vendor", profile.ID).Warn("No credentials stored, continuing without login")
		return session, nil
	}

	if err := session.Login(ctx, *profile.Login, cred); err != nil {
		session.Close()
		var authErr types.AuthError
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, types.AuthError{Vendor: profile.ID, Err: err}
	}
	e.logger.WithField("vendor", profile.ID).Info("Logged in")
	return session, nil
}

// extractedProduct is a product page read and its accepted images
type extractedProduct struct {
	raw    *types.RawExtraction
	images images.Result
}

// extractProduct renders productURL, reads its fields and acquires its images
func (e *Extractor) extractProduct(ctx context.Context, session types.Session, profile types.VendorProfile, productURL string) (*extractedProduct, error) {
	html, err := e.load(ctx, session, productURL)
	if err != nil {
		return nil, err
	}

	raw, err := e.fields.Extract(profile, productURL, html)
	if err != nil {
		return nil, err
	}
	for _, field := range raw.Misses {
		e.metrics.IncFieldMiss(profile.ID, field)
	}

	result := e.images.Acquire(ctx, raw.ImageURLs)
	for _, asset := range result.Assets {
		e.metrics.AddImageBytes(asset.ByteSize)
	}
	e.metrics.AddImageErrors(len(result.Errors))

	return &extractedProduct{raw: raw, images: result}, nil
}

// persistProduct classifies and normalizes an extracted product and upserts it
func (e *Extractor) persistProduct(ctx context.Context, product *extractedProduct, listingCategory string) (catalog.UpsertResult, error) {
	raw := product.raw
	class := classify.WithListingCategory(classify.Classify(raw.Name, raw.Description), listingCategory)

	record, err := catalog.Normalize(raw, product.images.Assets, class)
	if err != nil {
		return catalog.UpsertResult{}, err
	}
	return e.upsert(ctx, record)
}

// load renders a page, retrying render failures up to the configured count
func (e *Extractor) load(ctx context.Context, session types.Session, pageURL string) (string, error) {
	attempts := 1 + e.config.Session.RenderRetries

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		html, err := session.Load(ctx, pageURL)
		e.metrics.ObserveRender(time.Since(start))
		if err == nil {
			return html, nil
		}
		lastErr = err

		if !retryableRender(err) || ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			e.logger.WithField("url", pageURL).Debugf("Render attempt %d failed, retrying: %v", attempt, err)
		}
	}
	return "", lastErr
}

func retryableRender(err error) bool {
	var timeout types.RenderTimeout
	var renderErr types.RenderError
	return errors.As(err, &timeout) || errors.As(err, &renderErr)
}

// upsert writes a record, retrying persistence failures up to the configured count
func (e *Extractor) upsert(ctx context.Context, record *types.ProductRecord) (catalog.UpsertResult, error) {
	attempts := 1 + e.config.Run.PersistRetries

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := e.store.Upsert(ctx, record)
		if err == nil {
			return res, nil
		}
		lastErr = err
		e.logger.WithField("url", record.SourceURL).Debugf("Upsert attempt %d failed: %v", attempt, err)
	}
	return catalog.UpsertResult{}, lastErr
}
