package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bikepulse/internal/config"
	"bikepulse/internal/dataset"
	"bikepulse/internal/infrastructure"
	"bikepulse/pkg/contracts/domain"
)

// Join names used in logs, errors and the rows-dropped metric
const (
	JoinChildren = "children"
	JoinAdults   = "adults"
	JoinProfiles = "profiles"
)

// Inputs names the five files the cleaner reads
type Inputs struct {
	Stations     string
	AreaCounts   string
	Deprivation  string
	ChildObesity string
	AdultObesity string
}

// InputsFromPaths takes the cleaner inputs from the resolved artifact paths
func InputsFromPaths(p *config.Paths) Inputs {
	return Inputs{
		Stations:     p.StationsCSV,
		AreaCounts:   p.AreaCountCSV,
		Deprivation:  p.DeprivationFile,
		ChildObesity: p.ChildObesityFile,
		AdultObesity: p.AdultObesityFile,
	}
}

// Result is the combined table plus what the joins discarded
type Result struct {
	Profiles []domain.AreaProfile
	Stations int
	Areas    int
	Dropped  map[string]int
}

// Cleaner turns the fetched and reference tables into one profile per
// local authority.
type Cleaner struct {
	opts    config.CleaningConfig
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
}

// NewCleaner creates a cleaner. metrics may be nil.
func NewCleaner(opts config.CleaningConfig, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Cleaner {
	return &Cleaner{
		opts:    opts,
		logger:  infrastructure.WithComponent(logger, "cleaner"),
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
	}
}

type loadedInputs struct {
	stations     *dataset.Table
	areaCounts   *dataset.Table
	deprivation  *dataset.Table
	childObesity *dataset.Table
	adultObesity *dataset.Table
}

// load reads every input concurrently; the first failure cancels the rest
func (c *Cleaner) load(ctx context.Context, in Inputs) (*loadedInputs, error) {
	var out loadedInputs
	g, ctx := errgroup.WithContext(ctx)

	jobs := []struct {
		path     string
		dst      **dataset.Table
		required []string
	}{
		{in.Stations, &out.stations, nil},
		{in.AreaCounts, &out.areaCounts, nil},
		{in.Deprivation, &out.deprivation, []string{deprivationSheetColumn}},
		{in.ChildObesity, &out.childObesity, []string{indicatorSheetColumn}},
		{in.AdultObesity, &out.adultObesity, []string{indicatorSheetColumn}},
	}
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := dataset.ReadFile(job.path, job.required...)
			if err != nil {
				return err
			}
			c.logger.DebugContext(ctx, "loaded table",
				slog.String("file", job.path),
				slog.Int("rows", t.Len()))
			*job.dst = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Clean loads the inputs and builds the combined table, sorted by LA name.
// Areas missing from any side of the final name join are dropped and
// counted in Result.Dropped.
func (c *Cleaner) Clean(ctx context.Context, in Inputs) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "cleaner.Clean")
	defer span.End()
	start := time.Now()

	tables, err := c.load(ctx, in)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	if err := tables.stations.Require(domain.StationColumns...); err != nil {
		return nil, err
	}
	counts, err := readAreaCounts(tables.areaCounts)
	if err != nil {
		return nil, err
	}

	lsoas, err := buildLSOARecords(tables.deprivation, counts, c.opts.LondonPrefix)
	if err != nil {
		return nil, err
	}
	aggregates := aggregateByLA(lsoas, c.opts.LondonOnly)

	children, err := c.childProfiles(tables.childObesity)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, asAppError(err)
	}
	adults, err := c.adultProfiles(tables.adultObesity)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, asAppError(err)
	}

	result, err := c.combine(ctx, aggregates, children, adults)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, asAppError(err)
	}
	result.Stations = tables.stations.Len()
	result.Areas = len(counts)

	span.SetAttributes(
		attribute.Int("profiles", len(result.Profiles)),
		attribute.Int("lsoas", len(lsoas)),
	)
	c.logger.InfoContext(ctx, "cleaned reference data",
		slog.Int("stations", result.Stations),
		slog.Int("station_areas", result.Areas),
		slog.Int("lsoas", len(lsoas)),
		slog.Int("local_authorities", len(aggregates)),
		slog.Int("profiles", len(result.Profiles)),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// childProfiles filters the childhood data to the configured period and
// district rows and merges its four indicators by area code.
func (c *Cleaner) childProfiles(t *dataset.Table) ([]mergedArea, error) {
	t.Rename(indicatorColumns)
	if err := t.Require(colIndicatorName, colLACode, colLAName, colAreaType, colPeriod, colValue); err != nil {
		return nil, err
	}
	rows := t.Filter(func(r dataset.Row) bool {
		return r.Get(colPeriod) == c.opts.ChildPeriod && r.Get(colAreaType) == c.opts.ChildAreaType
	})

	indicators := []string{
		c.opts.ReceptionOverweight,
		c.opts.ReceptionObese,
		c.opts.YearSixOverweight,
		c.opts.YearSixObese,
	}
	subsets := make([]*indicatorSubset, len(indicators))
	for i, name := range indicators {
		s, err := extractSubset(JoinChildren, name, rows, dataset.Equals(colIndicatorName, name))
		if err != nil {
			return nil, err
		}
		subsets[i] = s
	}
	return mergeSubsets(JoinChildren, subsets...)
}

// adultProfiles filters the adult data to district rows and merges the
// overweight and obese indicators for the current and historic periods.
func (c *Cleaner) adultProfiles(t *dataset.Table) ([]mergedArea, error) {
	t.Rename(indicatorColumns)
	if err := t.Require(colIndicatorID, colLACode, colLAName, colAreaType, colPeriod, colValue); err != nil {
		return nil, err
	}
	rows := t.Filter(dataset.Equals(colAreaType, c.opts.AdultAreaType))

	selectors := []struct {
		period, id string
	}{
		{c.opts.AdultCurrentPeriod, c.opts.AdultOverweightID},
		{c.opts.AdultCurrentPeriod, c.opts.AdultObeseID},
		{c.opts.AdultHistoricPeriod, c.opts.AdultOverweightID},
		{c.opts.AdultHistoricPeriod, c.opts.AdultObeseID},
	}
	subsets := make([]*indicatorSubset, len(selectors))
	for i, sel := range selectors {
		sel := sel
		name := fmt.Sprintf("indicator %s (%s)", sel.id, sel.period)
		s, err := extractSubset(JoinAdults, name, rows, func(r dataset.Row) bool {
			return r.Get(colPeriod) == sel.period && r.Get(colIndicatorID) == sel.id
		})
		if err != nil {
			return nil, err
		}
		subsets[i] = s
	}
	return mergeSubsets(JoinAdults, subsets...)
}

// combine inner-joins the LA aggregates with the child and adult profiles
// on LA name.
func (c *Cleaner) combine(ctx context.Context, aggregates []laAggregate, children, adults []mergedArea) (*Result, error) {
	childByName, err := indexByName(JoinChildren, children)
	if err != nil {
		return nil, err
	}
	adultByName, err := indexByName(JoinAdults, adults)
	if err != nil {
		return nil, err
	}

	result := &Result{Dropped: map[string]int{JoinChildren: 0, JoinAdults: 0, JoinProfiles: 0}}
	matchedChildren := make(map[string]bool)
	matchedAdults := make(map[string]bool)

	for _, agg := range aggregates {
		child, okChild := childByName[agg.Name]
		adult, okAdult := adultByName[agg.Name]
		if !okChild || !okAdult {
			result.Dropped[JoinProfiles]++
			c.logger.DebugContext(ctx, "dropping local authority without obesity data",
				slog.String("la_name", agg.Name),
				slog.Bool("children", okChild),
				slog.Bool("adults", okAdult))
			continue
		}
		matchedChildren[agg.Name] = true
		matchedAdults[agg.Name] = true

		p := domain.AreaProfile{
			LACode:          agg.Code,
			LAName:          agg.Name,
			Rank:            agg.Rank,
			Decile:          agg.Decile,
			London:          agg.London,
			Bikepoint:       agg.Bikepoint,
			BikepointBinary: agg.BikepointBinary,
		}
		p.ReceptionOverweight = child.Values[0]
		p.ReceptionObese = child.Values[1]
		p.YearSixOverweight = child.Values[2]
		p.YearSixObese = child.Values[3]
		p.AdultsOverweight = adult.Values[0]
		p.AdultsObese = adult.Values[1]
		p.HistoricAdultsOverweight = adult.Values[2]
		p.HistoricAdultsObese = adult.Values[3]
		p.OverweightChange = subtract(p.AdultsOverweight, p.HistoricAdultsOverweight)
		p.ObeseChange = subtract(p.AdultsObese, p.HistoricAdultsObese)

		result.Profiles = append(result.Profiles, p)
	}

	result.Dropped[JoinChildren] = len(childByName) - len(matchedChildren)
	result.Dropped[JoinAdults] = len(adultByName) - len(matchedAdults)

	for join, n := range result.Dropped {
		c.metrics.RecordRowsDropped(ctx, join, n)
	}
	c.logger.InfoContext(ctx, "joined local authority profiles",
		slog.Int("rows", len(result.Profiles)),
		slog.Int("dropped_la_aggregates", result.Dropped[JoinProfiles]),
		slog.Int("dropped_children", result.Dropped[JoinChildren]),
		slog.Int("dropped_adults", result.Dropped[JoinAdults]))

	sort.Slice(result.Profiles, func(i, j int) bool {
		return result.Profiles[i].LAName < result.Profiles[j].LAName
	})
	return result, nil
}

func indexByName(join string, areas []mergedArea) (map[string]mergedArea, error) {
	byName := make(map[string]mergedArea, len(areas))
	for _, a := range areas {
		if _, dup := byName[a.Name]; dup {
			return nil, &JoinError{Join: join, Kind: JoinDuplicateKey, Subset: "la_name", Key: a.Name}
		}
		byName[a.Name] = a
	}
	return byName, nil
}
