// Package model holds the index built from a strategy/date artifact tree.
package model

// DateEntry is one dated analysis run inside a strategy directory
type DateEntry struct {
	Date       string
	HasOutput  bool
	OutputPath string   // slash-separated, relative to the site root; empty when HasOutput is false
	Images     []string // file names inside <date>/forward, ascending
}

// HasImages reports whether the forward gallery has at least one image
func (d DateEntry) HasImages() bool {
	return len(d.Images) > 0
}

// Strategy is a named analysis method and its dated results, newest first
type Strategy struct {
	Key         string
	Name        string
	Description string // trusted HTML from configuration
	Dates       []DateEntry
}

// Index is the full strategy -> dates model, in configuration order
type Index struct {
	Strategies []Strategy
}

// Strategy returns the strategy with the given key
func (idx *Index) Strategy(key string) (Strategy, bool) {
	for _, s := range idx.Strategies {
		if s.Key == key {
			return s, true
		}
	}
	return Strategy{}, false
}

// Keys returns strategy keys in index order
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.Strategies))
	for _, s := range idx.Strategies {
		keys = append(keys, s.Key)
	}
	return keys
}

// DateCount returns the number of date entries across all strategies
func (idx *Index) DateCount() int {
	n := 0
	for _, s := range idx.Strategies {
		n += len(s.Dates)
	}
	return n
}
