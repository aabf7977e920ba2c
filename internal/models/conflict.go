package models

import (
	"fmt"
	"strings"
	"time"
)

// Strategy is the closed set of resolution policies for a conflict.
type Strategy string

const (
	StrategyServerWins Strategy = "server_wins" // keep the payload currently on the server
	StrategyClientWins Strategy = "client_wins" // keep the payload of the losing write
	StrategyMerge      Strategy = "merge"       // commit a caller-assembled payload
)

// Strategies lists every supported strategy in a stable order
var Strategies = []Strategy{StrategyServerWins, StrategyClientWins, StrategyMerge}

// Valid reports whether s is one of the known strategies
func (s Strategy) Valid() bool {
	switch s {
	case StrategyServerWins, StrategyClientWins, StrategyMerge:
		return true
	}
	return false
}

// ParseStrategy принимает как канонические имена, так и короткие алиасы ("server", "client")
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "server_wins", "server-wins", "serverwins", "server":
		return StrategyServerWins, nil
	case "client_wins", "client-wins", "clientwins", "client":
		return StrategyClientWins, nil
	case "merge":
		return StrategyMerge, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidResolution, s)
}

// ConflictState is the lifecycle state of a conflict record.
type ConflictState string

const (
	ConflictUnresolved     ConflictState = "unresolved"
	ConflictStrategyChosen ConflictState = "strategy_chosen"
	ConflictCommitted      ConflictState = "committed"
)

// ConflictRecord фиксирует обнаруженный конфликт и (опционально) его разрешение.
// Запись создается в момент обнаружения и становится неизменяемой после установки ResolvedAt.
type ConflictRecord struct {
	DetectedAt       time.Time  `json:"detected_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ID               string     `json:"id"`
	EntityID         string     `json:"entity_id"`
	DetectedBy       string     `json:"detected_by"`
	Strategy         Strategy   `json:"strategy,omitempty"`
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

// IsResolved reports whether the record has been resolved
func (c *ConflictRecord) IsResolved() bool {
	return c.ResolvedAt != nil
}

// State returns the lifecycle state of the record.
// StrategyChosen is held only in memory while the resolution is being committed.
func (c *ConflictRecord) State() ConflictState {
	switch {
	case c.IsResolved():
		return ConflictCommitted
	case c.Strategy != "":
		return ConflictStrategyChosen
	}
	return ConflictUnresolved
}

// ChooseStrategy переводит неразрешенную запись в StrategyChosen.
// Повторный выбор до коммита заменяет стратегию.
func (c *ConflictRecord) ChooseStrategy(strategy Strategy) error {
	if c.IsResolved() {
		return fmt.Errorf("conflict %s: %w", c.ID, ErrAlreadyResolved)
	}
	if !strategy.Valid() {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidResolution, strategy)
	}
	c.Strategy = strategy
	return nil
}

// AbandonStrategy возвращает запись из StrategyChosen в Unresolved,
// когда коммит разрешения не состоялся
func (c *ConflictRecord) AbandonStrategy() {
	if !c.IsResolved() {
		c.Strategy = ""
	}
}

// ConflictResolution contains the fields written by the single allowed
// unresolved -> resolved transition of a ConflictRecord.
type ConflictResolution struct {
	ResolvedAt       time.Time
	Strategy         Strategy
	ResolvedBy       string
	ResolvedDigest   string
	ResolvedPayload  []byte
	ResultingVersion int64
}

// Apply копирует поля разрешения в запись
func (r ConflictResolution) Apply(c *ConflictRecord) {
	at := r.ResolvedAt
	c.Strategy = r.Strategy
	c.ResolvedPayload = r.ResolvedPayload
	c.ResolvedBy = r.ResolvedBy
	c.ResolvedAt = &at
	c.ResolvedDigest = r.ResolvedDigest
	c.ResultingVersion = r.ResultingVersion
}

// TimeRange is a half-open interval [From, To). A zero bound is unbounded.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls into the range
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// ConflictAnalytics агрегированная статистика по конфликтам за период
type ConflictAnalytics struct {
	StrategyDistribution map[Strategy]int `json:"strategy_distribution"`
	Range                TimeRange        `json:"range"`
	TotalConflicts       int              `json:"total_conflicts"`
	ResolvedCount        int              `json:"resolved_count"`
	ResolutionRate       float64          `json:"resolution_rate"`
}
