// Package billing models pricing tiers and the subscription an account holds.
//
// Tier prices are fixed in code; the matching Stripe price IDs come from
// configuration. A Subscription mirrors the state Stripe reports through
// webhooks and is the only billing state persisted locally.
package billing
