package app

import (
	"time"

	"github.com/solanahub/solblaze-detox/store"
)

type PoolRefresh struct {
	Signature   string `json:"signature"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	RequestTime string `json:"request_time,omitempty"`
	FinishTime  string `json:"finish_time,omitempty"`
}

type RemediationPlan struct {
	StakeAccount string  `json:"stakeAccount"`
	VoteAccount  string  `json:"voteAccount"`
	Balance      float64 `json:"balance"`
	Estimate     string  `json:"estimate,omitempty"`
	Transaction  string  `json:"transaction"`
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05.000")
}

func buildPoolRefreshes(records []*store.PoolRefresh) []*PoolRefresh {
	refreshes := make([]*PoolRefresh, 0, len(records))
	for _, record := range records {
		refreshes = append(refreshes, &PoolRefresh{
			Signature:   record.Signature,
			Status:      record.Status,
			Error:       record.Error,
			RequestTime: formatMillis(record.RequestTime),
			FinishTime:  formatMillis(record.FinishTime),
		})
	}
	return refreshes
}
