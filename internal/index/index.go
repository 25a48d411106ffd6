// Package index turns scan results into the model.Index consumed by the renderers.
package index

import (
	"path"
	"sort"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/model"
	"github.com/drew/stratsite/internal/scan"
)

// Build attaches display metadata to each scanned strategy and orders its dates
// newest first by plain string comparison. Folder names that do not sort
// chronologically as strings come out in string order.
func Build(dirs []scan.StrategyDir, table config.StrategyTable, resultFile string) *model.Index {
	idx := &model.Index{Strategies: make([]model.Strategy, 0, len(dirs))}

	for _, dir := range dirs {
		name, description := table.Lookup(dir.Key)
		strategy := model.Strategy{
			Key:         dir.Key,
			Name:        name,
			Description: description,
			Dates:       make([]model.DateEntry, 0, len(dir.Dates)),
		}

		for _, d := range dir.Dates {
			entry := model.DateEntry{
				Date:      d.Name,
				HasOutput: d.HasOutput,
				Images:    append([]string{}, d.Images...),
			}
			if d.HasOutput {
				entry.OutputPath = path.Join(dir.Key, d.Name, config.OutputDirName, resultFile)
			}
			strategy.Dates = append(strategy.Dates, entry)
		}

		sort.SliceStable(strategy.Dates, func(i, j int) bool {
			return strategy.Dates[i].Date > strategy.Dates[j].Date
		})

		idx.Strategies = append(idx.Strategies, strategy)
	}

	return idx
}
