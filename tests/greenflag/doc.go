// Package greenflag contains Green-Flag tests that prove the system correctly
// succeeds on explicitly safe behavior. These tests validate happy paths.
package greenflag

// This package contains Green-Flag tests organized by flow:
// - mint_flow_test.go: capability-gated mint with exact amount round trips
// - burn_flow_test.go: whole-object and split burns, pause and resume
// - admin_handoff_test.go: registry pointer update plus capability transfer
