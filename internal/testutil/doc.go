// Package testutil provides deterministic helpers shared by package tests
// and the scenario harness.
package testutil
