package services

import (
	"sort"
	"strconv"
	"strings"

	"sheet-enricher/models"
	"sheet-enricher/utils"
)

// ChainSeparator joins device categories inside a touch chain.
const ChainSeparator = " -> "

// TouchChainAggregator groups marketing records by client.
type TouchChainAggregator struct {
	logger *utils.Logger
}

func NewTouchChainAggregator(logger *utils.Logger) *TouchChainAggregator {
	return &TouchChainAggregator{logger: logger}
}

// Aggregate returns one summary per client id, ordered by client id.
// Within a client, touches keep record order.
func (a *TouchChainAggregator) Aggregate(records []*models.MarketingRecord) []models.TouchChain {
	type group struct {
		devices []string
		sum     float64
	}
	groups := make(map[string]*group)
	var ids []string

	for _, r := range records {
		g, ok := groups[r.ClientID]
		if !ok {
			g = &group{}
			groups[r.ClientID] = g
			ids = append(ids, r.ClientID)
		}
		g.devices = append(g.devices, r.DeviceCategory)
		g.sum += r.Conversion
	}

	sort.SliceStable(ids, func(i, j int) bool { return lessClientID(ids[i], ids[j]) })

	chains := make([]models.TouchChain, 0, len(ids))
	for _, id := range ids {
		g := groups[id]
		flag := 0
		if g.sum > 0 {
			flag = 1
		}
		chains = append(chains, models.TouchChain{
			ClientID:       id,
			Chain:          strings.Join(g.devices, ChainSeparator),
			ConversionSum:  g.sum,
			ConversionFlag: flag,
			TouchCount:     len(g.devices),
		})
	}

	a.logger.Info("[chains] Aggregated %d records into %d client chains", len(records), len(chains))
	return chains
}

// TouchChainSheet renders chains as the touch-chain sheet.
func TouchChainSheet(chains []models.TouchChain) *models.Sheet {
	s := models.NewSheet(models.SheetTouchChains, []string{
		models.ColClientID,
		models.ColDeviceCategory,
		models.ColConversionSum,
		models.ColConversionFlag,
		models.ColTouchCount,
	})
	for _, c := range chains {
		s.AppendRow([]string{
			c.ClientID,
			c.Chain,
			formatNumber(c.ConversionSum),
			strconv.Itoa(c.ConversionFlag),
			strconv.Itoa(c.TouchCount),
		})
	}
	return s
}

// lessClientID orders numeric ids numerically, before any non-numeric id.
func lessClientID(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
