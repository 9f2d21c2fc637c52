package services

import (
	"context"
	"fmt"

	"sheet-enricher/models"
	"sheet-enricher/utils"
)

// PipelineOptions configures the transformation stage.
type PipelineOptions struct {
	BrandAliases       map[string][]string
	DomainReplacements []Replacement
	Policy             MatchPolicy
	MaxWorkers         int
}

// Snapshot is the shared lookup state built before any concurrent task starts.
// Nothing writes to it afterwards.
type Snapshot struct {
	Rates      RateTable
	Dictionary *Dictionary
}

// Result holds the replacement sheets produced by one run.
type Result struct {
	Catalog     *models.Sheet
	Marketing   *models.Sheet
	TouchChains *models.Sheet
	Chains      []models.TouchChain
}

// Pipeline sequences tagging and pricing (concurrently) and then touch-chain aggregation.
type Pipeline struct {
	logger     *utils.Logger
	normalizer *BrandNormalizer
	fixer      *DomainFixer
	policy     MatchPolicy
	maxWorkers int
	aggregator *TouchChainAggregator
}

func NewPipeline(logger *utils.Logger, opts PipelineOptions) *Pipeline {
	policy := opts.Policy
	if policy == "" {
		policy = PolicyLastMatch
	}
	return &Pipeline{
		logger:     logger,
		normalizer: NewBrandNormalizer(opts.BrandAliases),
		fixer:      NewDomainFixer(opts.DomainReplacements),
		policy:     policy,
		maxWorkers: opts.MaxWorkers,
		aggregator: NewTouchChainAggregator(logger),
	}
}

// Run prepares the workbook and transforms it. On success the workbook holds the
// replacement sheets; on failure it is left as Prepare made it.
func (p *Pipeline) Run(ctx context.Context, wb *models.Workbook) (*Result, error) {
	snap, err := p.Prepare(wb)
	if err != nil {
		return nil, err
	}
	return p.Transform(ctx, wb, snap)
}

// Prepare normalises catalog brands and marketing domains, clears previous tags,
// and builds the rate table and dictionary snapshots.
func (p *Pipeline) Prepare(wb *models.Workbook) (*Snapshot, error) {
	catalog, marketing, rates, err := requiredSheets(wb)
	if err != nil {
		return nil, err
	}

	p.normalizer.NormalizeSheet(catalog)
	p.fixer.FixSheet(marketing)
	marketing.EnsureColumn(models.ColBrand)
	marketing.EnsureColumn(models.ColModel)
	for i := 0; i < marketing.Len(); i++ {
		marketing.Set(i, models.ColBrand, "")
		marketing.Set(i, models.ColModel, "")
	}

	entries, err := RatesFromSheet(rates)
	if err != nil {
		return nil, err
	}
	table, err := BuildRateTable(entries)
	if err != nil {
		return nil, fmt.Errorf("build rate table: %w", err)
	}

	dict, err := BuildDictionary(catalog)
	if err != nil {
		return nil, err
	}

	p.logger.Info("[pipeline] Snapshot ready: %d rates, %d dictionary entries", table.Len(), dict.Len())
	return &Snapshot{Rates: table, Dictionary: dict}, nil
}

// Transform runs tagging and pricing side by side, then aggregates the tagged records.
// Each task works on its own copy of its sheet, so a failed run publishes nothing.
func (p *Pipeline) Transform(ctx context.Context, wb *models.Workbook, snap *Snapshot) (*Result, error) {
	catalog, marketing, _, err := requiredSheets(wb)
	if err != nil {
		return nil, err
	}

	catalogOut := catalog.Clone()
	marketingOut := marketing.Clone()
	var tagged []*models.MarketingRecord

	pool := utils.NewWorkerPool(ctx, p.maxWorkers, 0)

	pool.Submit(func(ctx context.Context) error {
		records, err := DecodeMarketing(marketingOut)
		if err != nil {
			return fmt.Errorf("tagging: %w", err)
		}
		NewTagger(snap.Dictionary, p.policy, p.logger).Tag(records)
		EncodeMarketing(marketingOut, records)
		tagged = records
		return nil
	})

	pool.Submit(func(ctx context.Context) error {
		rows, err := DecodeCatalog(catalogOut)
		if err != nil {
			return fmt.Errorf("pricing: %w", err)
		}
		NewPricer(snap.Rates, p.logger).Apply(rows)
		EncodeCatalog(catalogOut, rows)
		return nil
	})

	// Aggregation reads the tagged records, so both tasks must finish first.
	if err := pool.Wait(); err != nil {
		return nil, err
	}

	chains := p.aggregator.Aggregate(tagged)
	chainSheet := TouchChainSheet(chains)

	wb.Put(catalogOut)
	wb.Put(marketingOut)
	wb.Put(chainSheet)

	return &Result{
		Catalog:     catalogOut,
		Marketing:   marketingOut,
		TouchChains: chainSheet,
		Chains:      chains,
	}, nil
}

func requiredSheets(wb *models.Workbook) (catalog, marketing, rates *models.Sheet, err error) {
	names := []string{models.SheetCatalog, models.SheetMarketing, models.SheetRates}
	found := make([]*models.Sheet, len(names))
	for i, n := range names {
		s, ok := wb.Sheet(n)
		if !ok {
			return nil, nil, nil, &models.StructureError{Table: n, Reason: "sheet not found in workbook"}
		}
		found[i] = s
	}
	return found[0], found[1], found[2], nil
}
