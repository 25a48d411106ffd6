package config

// BuiltInStrategies returns the description table used when no config file overrides it
func BuiltInStrategies() StrategyTable {
	return StrategyTable{
		"dma": {
			Title:       "Strategy I: Dual Moving Average (DMA)",
			Description: "This strategy uses two Moving Averages (MA) to determine trend direction. A buy signal is generated when the short-term MA crosses above the long-term MA. <b>Baseline</b> refers to the standard Buy & Hold strategy return for the same period.",
		},
		"dma_bo": {
			Title:       "Strategy I (India)",
			Description: "Implementation of the Dual Moving Average strategy specifically tuned for the Indian market indices. Follows the same logic as the standard DMA but may use different default windows.",
		},
		"dma_hmm": {
			Title:       "Strategy II: DMA + Hidden Markov Model",
			Description: "Enhances the standard DMA strategy by overlaying a Hidden Markov Model (HMM) to detect market regimes (e.g., Bull vs. Bear). Trades are only taken when the HMM indicates a favorable regime.",
		},
		"dma_hmm_bo": {
			Title:       "Strategy II (India)",
			Description: "The HMM-enhanced strategy applied to Indian markets.",
		},
		"pv": {
			Title:       "Peak Valley",
			Description: "A price-action based strategy that identifies peaks and valleys to determine trend reversals and continuation patterns.",
		},
	}
}

// BuiltInStrategyOrder returns the default scan order for built-in strategies
func BuiltInStrategyOrder() []string {
	return []string{
		"dma",
		"dma_bo",
		"dma_hmm",
		"dma_hmm_bo",
		"pv",
	}
}

// ReservedDirNames are never treated as date folders
func ReservedDirNames() []string {
	return []string{OutputDirName, ForwardDirName, ".git"}
}
