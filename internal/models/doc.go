// Package models defines the core domain models of the split ledger.
//
// # Source of truth
//
// Users, Groups and Expenses (with their Splits) are persisted by a store.
// Expenses are immutable once recorded: an edit is a delete plus a new
// expense, which this module does not model.
//
// # Derived models
//
// NetBalance and GroupBalanceView are recomputed from the expense history
// on every query and never persisted.
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers between aggregates.
//  2. Amounts are money.Money; percentages are decimals. No floats.
//  3. Group membership is fixed when the group is created.
package models
