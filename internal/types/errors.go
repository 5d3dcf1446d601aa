package types

import "errors"

var (
	// ErrSourceUnavailable marks a network or API failure of a news, model or
	// price provider. It is scoped to the key being processed.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUnparseableSentiment marks classifier output that maps to no label.
	ErrUnparseableSentiment = errors.New("unparseable sentiment")

	// ErrDataInsufficient marks a key without enough forward closes.
	ErrDataInsufficient = errors.New("insufficient price data")

	// ErrConfiguration is fatal at startup.
	ErrConfiguration = errors.New("configuration error")
)
