// Package shared holds helpers used by the tests of several packages.
//
// The testutil subpackage builds order dataset fixtures (OrdersCSV,
// WriteOrders, SampleOrders) and captures slog output for assertions
// (NewTestLogger).
package shared
