package dataprocessing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bikepulse/internal/dataset"
	"bikepulse/pkg/contracts/domain"
)

// lsoaRecord is one deprivation row with its derived flags
type lsoaRecord struct {
	LSOA      string
	LACode    string
	LAName    string
	Rank      int64
	Decile    float64
	Bikepoint bool
	London    bool
}

// laAggregate is the station and deprivation summary of one local authority
type laAggregate struct {
	Code            string
	Name            string
	Rank            float64
	Decile          float64
	Bikepoint       float64
	BikepointBinary bool
	London          bool
	LSOAs           int
}

// buildLSOARecords parses the deprivation table and marks every LSOA that
// holds at least one station and every LSOA inside London.
func buildLSOARecords(t *dataset.Table, counts domain.AreaCounts, londonPrefix string) ([]lsoaRecord, error) {
	t.Rename(deprivationColumns)
	if err := t.Require(colLSOA, colLACode, colLAName, colRank, colDecile); err != nil {
		return nil, err
	}

	records := make([]lsoaRecord, 0, t.Len())
	err := t.Each(func(r dataset.Row) error {
		rank, err := dataset.ParseThousands(r.Get(colRank))
		if err != nil {
			return fmt.Errorf("%s line %d: %w", t.Name, r.Line, err)
		}
		decile, err := strconv.ParseFloat(r.Get(colDecile), 64)
		if err != nil {
			return fmt.Errorf("%s line %d: invalid decile %q: %w", t.Name, r.Line, r.Get(colDecile), err)
		}

		code := r.Get(colLACode)
		records = append(records, lsoaRecord{
			LSOA:      r.Get(colLSOA),
			LACode:    code,
			LAName:    r.Get(colLAName),
			Rank:      rank,
			Decile:    decile,
			Bikepoint: counts.Has(r.Get(colLSOA)),
			London:    strings.HasPrefix(code, londonPrefix),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// aggregateByLA groups LSOA records by local authority name. bikepoint is
// the share of LSOAs with a station; rank and decile are LSOA means.
func aggregateByLA(records []lsoaRecord, londonOnly bool) []laAggregate {
	type acc struct {
		laAggregate
		rankSum, decileSum float64
		withStation        int
	}

	groups := make(map[string]*acc)
	for _, r := range records {
		if londonOnly && !r.London {
			continue
		}
		g, ok := groups[r.LAName]
		if !ok {
			g = &acc{laAggregate: laAggregate{Code: r.LACode, Name: r.LAName, London: r.London}}
			groups[r.LAName] = g
		}
		g.LSOAs++
		g.rankSum += float64(r.Rank)
		g.decileSum += r.Decile
		if r.Bikepoint {
			g.withStation++
		}
	}

	out := make([]laAggregate, 0, len(groups))
	for _, g := range groups {
		n := float64(g.LSOAs)
		g.Rank = g.rankSum / n
		g.Decile = g.decileSum / n
		g.Bikepoint = float64(g.withStation) / n
		g.BikepointBinary = g.withStation > 0
		out = append(out, g.laAggregate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// readAreaCounts converts la_counts.csv into an AreaCounts map
func readAreaCounts(t *dataset.Table) (domain.AreaCounts, error) {
	if err := t.Require(domain.AreaCountColumns...); err != nil {
		return nil, err
	}
	counts := make(domain.AreaCounts, t.Len())
	err := t.Each(func(r dataset.Row) error {
		n, err := dataset.ParseThousands(r.Get(colCount))
		if err != nil {
			return fmt.Errorf("%s line %d: %w", t.Name, r.Line, err)
		}
		counts[r.Get(colLSOA)] += int(n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
