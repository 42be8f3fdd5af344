// Package dataprocessing loads the joined order dataset and computes the
// dashboard views over it.
//
// # Data Flow
//
//	CSV file → Load → Table → Filter → AggregateDaily / AggregateCategoryFrequency / AggregateReviewPreference
//
// The table produced by Load is sorted by purchase timestamp and never
// modified afterwards. Filter and every aggregator allocate fresh output, so
// a single Dataset can be shared by concurrent requests without locking.
//
// # Usage
//
//	ds, err := dataprocessing.OpenDataset(ctx, "data/orders.csv", dataprocessing.DefaultLoadOptions())
//	if err != nil {
//	    return err
//	}
//	feb := dataprocessing.Filter(ds.Table(), start, end)
//	daily := dataprocessing.FillDailyGaps(dataprocessing.AggregateDaily(feb))
//	best := dataprocessing.TopCategories(dataprocessing.AggregateCategoryFrequency(feb), 5)
//
// # Error Handling
//
// Load failures wrap one of ErrFileNotFound, ErrSchemaMismatch,
// ErrMalformedTimestamp, ErrMalformedNumber or ErrMalformedRow in a
// *LoadError carrying the line and column. Use errors.Is to classify them.
// An empty date range is not an error: aggregators return empty slices.
package dataprocessing
