// Package revenuesplitservice implements the pooled-treasury accounting engine.
//
// The module owns the share registry, the pull-based proportional payout
// ledger, and the investor fee reimbursement queue. It exposes HTTP
// command/query handlers and the worker entrypoint for outbox relay.
package revenuesplitservice
