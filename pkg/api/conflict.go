package api

import (
	"time"

	"github.com/iudanet/playsync/internal/models"
)

// ResolveRequest представляет запрос на разрешение конфликта
type ResolveRequest struct {
	Strategy string `json:"strategy"`          // server_wins, client_wins, merge
	Actor    string `json:"actor,omitempty"`   // должен совпадать с актором токена
	Payload  []byte `json:"payload,omitempty"` // обязателен для merge
}

// ConflictResponse представляет запись журнала конфликтов
type ConflictResponse struct {
	DetectedAt       time.Time  `json:"detected_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ID               string     `json:"id"`
	EntityID         string     `json:"entity_id"`
	DetectedBy       string     `json:"detected_by"`
	Strategy         string     `json:"strategy,omitempty"`
	ResolvedBy       string     `json:"resolved_by,omitempty"`
	ClientDigest     string     `json:"client_digest,omitempty"`
	ServerDigest     string     `json:"server_digest,omitempty"`
	ResolvedDigest   string     `json:"resolved_digest,omitempty"`
	ClientPayload    []byte     `json:"client_payload"`
	ServerPayload    []byte     `json:"server_payload"`
	ResolvedPayload  []byte     `json:"resolved_payload,omitempty"`
	BaseVersion      int64      `json:"base_version"`
	ServerVersion    int64      `json:"server_version"`
	ResultingVersion int64      `json:"resulting_version,omitempty"`
}

// ConflictHistoryResponse представляет историю конфликтов сущности
type ConflictHistoryResponse struct {
	EntityID  string             `json:"entity_id"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

// AnalyticsResponse представляет статистику конфликтов за период
type AnalyticsResponse struct {
	From                 *time.Time     `json:"from,omitempty"`
	To                   *time.Time     `json:"to,omitempty"`
	StrategyDistribution map[string]int `json:"strategy_distribution"`
	TotalConflicts       int            `json:"total_conflicts"`
	ResolvedCount        int            `json:"resolved_count"`
	ResolutionRate       float64        `json:"resolution_rate"`
}

// ConflictFromModel converts a conflict record into its wire form
func ConflictFromModel(c *models.ConflictRecord) *ConflictResponse {
	if c == nil {
		return nil
	}
	return &ConflictResponse{
		ID:               c.ID,
		EntityID:         c.EntityID,
		BaseVersion:      c.BaseVersion,
		ServerVersion:    c.ServerVersion,
		ClientPayload:    c.ClientPayload,
		ServerPayload:    c.ServerPayload,
		ClientDigest:     c.ClientDigest,
		ServerDigest:     c.ServerDigest,
		DetectedBy:       c.DetectedBy,
		DetectedAt:       c.DetectedAt,
		Strategy:         string(c.Strategy),
		ResolvedPayload:  c.ResolvedPayload,
		ResolvedDigest:   c.ResolvedDigest,
		ResolvedBy:       c.ResolvedBy,
		ResolvedAt:       c.ResolvedAt,
		ResultingVersion: c.ResultingVersion,
	}
}

// Model converts the wire form back into a conflict record
func (r *ConflictResponse) Model() *models.ConflictRecord {
	if r == nil {
		return nil
	}
	return &models.ConflictRecord{
		ID:               r.ID,
		EntityID:         r.EntityID,
		BaseVersion:      r.BaseVersion,
		ServerVersion:    r.ServerVersion,
		ClientPayload:    r.ClientPayload,
		ServerPayload:    r.ServerPayload,
		ClientDigest:     r.ClientDigest,
		ServerDigest:     r.ServerDigest,
		DetectedBy:       r.DetectedBy,
		DetectedAt:       r.DetectedAt,
		Strategy:         models.Strategy(r.Strategy),
		ResolvedPayload:  r.ResolvedPayload,
		ResolvedDigest:   r.ResolvedDigest,
		ResolvedBy:       r.ResolvedBy,
		ResolvedAt:       r.ResolvedAt,
		ResultingVersion: r.ResultingVersion,
	}
}

// AnalyticsFromModel converts aggregated analytics into its wire form
func AnalyticsFromModel(a *models.ConflictAnalytics) AnalyticsResponse {
	resp := AnalyticsResponse{
		TotalConflicts:       a.TotalConflicts,
		ResolvedCount:        a.ResolvedCount,
		ResolutionRate:       a.ResolutionRate,
		StrategyDistribution: make(map[string]int, len(a.StrategyDistribution)),
	}

	for strategy, count := range a.StrategyDistribution {
		resp.StrategyDistribution[string(strategy)] = count
	}
	if !a.Range.From.IsZero() {
		from := a.Range.From
		resp.From = &from
	}
	if !a.Range.To.IsZero() {
		to := a.Range.To
		resp.To = &to
	}

	return resp
}

// Model converts the wire form back into aggregated analytics
func (r *AnalyticsResponse) Model() *models.ConflictAnalytics {
	a := &models.ConflictAnalytics{
		TotalConflicts:       r.TotalConflicts,
		ResolvedCount:        r.ResolvedCount,
		ResolutionRate:       r.ResolutionRate,
		StrategyDistribution: make(map[models.Strategy]int, len(r.StrategyDistribution)),
	}

	for strategy, count := range r.StrategyDistribution {
		a.StrategyDistribution[models.Strategy(strategy)] = count
	}
	if r.From != nil {
		a.Range.From = *r.From
	}
	if r.To != nil {
		a.Range.To = *r.To
	}

	return a
}
