package domain

import "context"

// CustomerDirectory is the backing source of customer names.
type CustomerDirectory interface {
	FindCustomers(ctx context.Context, term string) ([]string, error)
}

// CustomerLookup is the asynchronous lookup the search pipeline dispatches.
// Implementations should return promptly once ctx is cancelled.
type CustomerLookup interface {
	Search(ctx context.Context, term string) ([]string, error)
}

// LookupFunc adapts a plain function to CustomerLookup.
type LookupFunc func(ctx context.Context, term string) ([]string, error)

func (f LookupFunc) Search(ctx context.Context, term string) ([]string, error) {
	return f(ctx, term)
}

// SearchState is what a search box renders.
type SearchState struct {
	Term    string   `json:"searchTerm"`
	Results []string `json:"results"`
	Loading bool     `json:"loading"`
	Error   string   `json:"error,omitempty"`
}

// SearchObserver is called with a copy of the state after every change. It
// runs while the pipeline is locked and must not call back into it.
type SearchObserver func(state SearchState)
