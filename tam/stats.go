package tam

import (
	"github.com/gxmkit/texarsenal/gxm"
	"github.com/gxmkit/texarsenal/memutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// detailedHeap is implemented by heaps that can describe their internal layout
type detailedHeap interface {
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	PrintDetailedMap(json jwriter.ObjectState)
}

// BuildStatsString renders the usage of every domain as JSON. When detailed is true, domains
// whose heap can describe its layout also list their free and allocated ranges, and
// DetailedTotal sums those domains.
func (a *Allocator) BuildStatsString(detailed bool) string {
	writer := jwriter.NewWriter()
	root := writer.Object()

	budgets := a.Budgets()
	var total memutils.Statistics
	for domain := range budgets {
		total.AddStatistics(&budgets[domain].Statistics)
	}

	totalObj := root.Name("Total").Object()
	printStatistics(&totalObj, &total)
	totalObj.End()

	var detailedTotal memutils.DetailedStatistics
	detailedTotal.Clear()

	domains := root.Name("Domains").Object()
	for domain := gxm.DomainVRAM; int(domain) < gxm.DomainCount; domain++ {
		heap := a.device.Heap(domain)
		if heap == nil {
			continue
		}

		domainObj := domains.Name(domain.String()).Object()
		domainObj.Name("Capacity").Int(heap.Capacity())
		domainObj.Name("FreeBytes").Int(heap.FreeBytes())
		domainObj.Name("Usage").Int(budgets[domain].Usage)

		statsObj := domainObj.Name("Stats").Object()
		printStatistics(&statsObj, &budgets[domain].Statistics)
		statsObj.End()

		if described, ok := heap.(detailedHeap); ok && detailed {
			var stats memutils.DetailedStatistics
			stats.Clear()
			described.AddDetailedStatistics(&stats)
			detailedTotal.AddDetailedStatistics(&stats)

			detailedObj := domainObj.Name("DetailedStats").Object()
			printDetailedStatistics(&detailedObj, &stats)
			detailedObj.End()

			mapObj := domainObj.Name("DetailedMap").Object()
			described.PrintDetailedMap(mapObj)
			mapObj.End()
		}

		domainObj.End()
	}
	domains.End()

	if detailed {
		detailedObj := root.Name("DetailedTotal").Object()
		printDetailedStatistics(&detailedObj, &detailedTotal)
		detailedObj.End()
	}

	root.End()
	return string(writer.Bytes())
}

func printStatistics(json *jwriter.ObjectState, stats *memutils.Statistics) {
	json.Name("BlockCount").Int(stats.BlockCount)
	json.Name("BlockBytes").Int(stats.BlockBytes)
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)
}

func printDetailedStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	printStatistics(json, &stats.Statistics)
	json.Name("UnusedRangeCount").Int(stats.UnusedRangeCount)

	if stats.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
	if stats.UnusedRangeCount > 0 {
		json.Name("UnusedRangeSizeMin").Int(stats.UnusedRangeSizeMin)
		json.Name("UnusedRangeSizeMax").Int(stats.UnusedRangeSizeMax)
	}
}
