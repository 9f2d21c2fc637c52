package storage

import "sheet-enricher/models"

// ChainWriter is the interface any touch-chain sink must satisfy.
type ChainWriter interface {
	WriteChains(chains []models.TouchChain) error
	Close() error
}

// RateWriter persists the rate table as fetched.
type RateWriter interface {
	WriteRates(entries []models.RateEntry) error
}
