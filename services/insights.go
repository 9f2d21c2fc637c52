package services

import (
	"sort"
	"strings"

	"sheet-enricher/models"
	"sheet-enricher/utils"
)

const topChainsLimit = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(chains []models.TouchChain) *models.ChainReport {
	report := &models.ChainReport{
		ClientsByTouches: make(map[int]int),
	}

	if len(chains) == 0 {
		return report
	}

	report.TotalClients = len(chains)

	chainClients := make(map[string]int)
	for _, c := range chains {
		report.TotalTouches += c.TouchCount
		if c.ConversionFlag == 1 {
			report.ConvertedClients++
		}
		report.ClientsByTouches[c.TouchCount]++
		chainClients[c.Chain]++
	}

	report.ConversionRate = round2(float64(report.ConvertedClients) / float64(report.TotalClients) * 100)
	report.AverageTouches = round2(float64(report.TotalTouches) / float64(report.TotalClients))

	for chain, n := range chainClients {
		report.TopChains = append(report.TopChains, models.ChainCount{Chain: chain, Clients: n})
	}
	sort.Slice(report.TopChains, func(i, j int) bool {
		if report.TopChains[i].Clients != report.TopChains[j].Clients {
			return report.TopChains[i].Clients > report.TopChains[j].Clients
		}
		return report.TopChains[i].Chain < report.TopChains[j].Chain
	})
	if len(report.TopChains) > topChainsLimit {
		report.TopChains = report.TopChains[:topChainsLimit]
	}

	return report
}

// Log writes the report through the logger.
func (s *InsightService) Log(r *models.ChainReport) {
	s.logger.Info("[insights] Clients: %d | converted: %d (%.2f%%) | touches: %d | avg touches: %.2f",
		r.TotalClients, r.ConvertedClients, r.ConversionRate, r.TotalTouches, r.AverageTouches)

	for i, c := range r.TopChains {
		s.logger.Info("[insights] Top chain %d: %s (%d clients)", i+1, truncate(c.Chain, 80), c.Clients)
	}

	counts := make([]int, 0, len(r.ClientsByTouches))
	for n := range r.ClientsByTouches {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	for _, n := range counts {
		s.logger.Debug("[insights] %2d touches %s (%d)", n,
			strings.Repeat("█", min(r.ClientsByTouches[n], 40)), r.ClientsByTouches[n])
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
