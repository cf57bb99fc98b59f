// Package dataprocessing is the cleaning stage of the pipeline. It turns the
// two fetched tables (stations and per-LSOA station counts) and the three
// reference tables (deprivation, childhood obesity, adult obesity) into one
// profile per local authority.
//
// # Data Flow
//
//	deprivation + la_counts -> LSOA flags -> LA aggregates --+
//	childhood obesity -> 4 indicator subsets -> merge -------+-> join on la_name -> profiles
//	adult obesity -> 4 period/indicator subsets -> merge ----+
//
// Source headers are renamed to canonical names first (see columns.go).
// Ranks carry thousands separators and are parsed with dataset.ParseThousands.
//
// # Merging
//
// Indicator subsets are merged on area code. Every subset must cover
// exactly the same areas with no duplicates; otherwise Clean fails with a
// *JoinError. The final join on LA name is an inner join: areas missing on
// any side are dropped, logged and counted in Result.Dropped.
//
// # Usage
//
//	cleaner := dataprocessing.NewCleaner(cfg.Cleaning, logger, metrics)
//	result, err := cleaner.Clean(ctx, dataprocessing.InputsFromPaths(paths))
//	if err != nil {
//	    return err
//	}
//	err = writer.WriteProfiles(ctx, result.Profiles)
package dataprocessing
