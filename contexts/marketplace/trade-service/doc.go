// Package tradeservice tracks purchase transactions between buyers and
// the publishers of car listings, from the pending offer through the
// accepted, rejected, or completed outcome.
//
// Layering follows the rest of the marketplace context: domain entities
// and errors, ports, the application service, and adapters for memory,
// postgres, and http transport.
package tradeservice
