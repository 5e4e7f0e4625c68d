// Package models defines the core domain models for Splitfair.
//
// # Models
//
//   - User: a registered account, synced from the identity provider or
//     created through the local register flow
//   - Expense: a shared expense with a payer and per-user splits
//   - Settlement: a direct payment between two users
//   - Group: a named set of members that scopes expenses and settlements
//
// # Conventions
//
// All timestamps are Unix milliseconds. Monetary amounts are float64 in a
// single implicit currency. Relationships use ID strings rather than
// pointers to avoid circular references. An expense or settlement with an
// empty GroupID is "personal", i.e. not scoped to any group.
package models
