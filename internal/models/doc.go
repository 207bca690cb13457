// Package models defines the core domain models for Borrow Checker.
//
// # Models
//
//   - Group: everyone who shares ledgers, as a list of Entity records
//   - Entity: one person, identified by a UUID
//   - Ledger: one shared account (a trip, an event) with its participant subset
//   - Transaction: one expense with a payer and a cost split
//   - Split: one participant's exact fractional share of a transaction
//   - Settlement: a proposed payment that reduces outstanding balances
//
// # Design Principles
//
// 1. **Exact shares**: split ratios are numerator/denominator pairs, never floats
// 2. **Decimal amounts**: transaction amounts use shopspring/decimal
// 3. **IDs, not pointers**: relationships reference Entity IDs
// 4. **Storage agnostic**: models carry no persistence tags; record formats live in storage
package models
