package validation

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/iudanet/playsync/internal/models"
)

// ActorPattern определяет допустимый формат идентификатора актора
// Латинские буквы, цифры, подчеркивание, точка, дефис и @. Длина: 3-64 символа
var ActorPattern = regexp.MustCompile(`^[a-zA-Z0-9_.@-]{3,64}$`)

// EntityIDPattern определяет допустимый формат идентификатора сущности
// Первый символ - буква или цифра, далее буквы, цифры, '_', '.', '-'. Длина: 1-128 символов
var EntityIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,127}$`)

const (
	// MaxPayloadSize максимальный размер payload (1 MiB)
	MaxPayloadSize = 1 << 20
)

// ValidateActor проверяет идентификатор актора
func ValidateActor(actor string) error {
	if actor == "" {
		return fmt.Errorf("actor cannot be empty")
	}

	if !ActorPattern.MatchString(actor) {
		return fmt.Errorf("actor must be 3-64 characters: letters, numbers, '_', '.', '-', '@'")
	}

	return nil
}

// ValidateEntityID проверяет идентификатор сущности
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("entity id cannot be empty")
	}

	if !EntityIDPattern.MatchString(id) {
		return fmt.Errorf("entity id %q is invalid: up to 128 characters, letters, numbers, '_', '.', '-'", id)
	}

	return nil
}

// ValidatePayload проверяет, что payload не пустой и не превышает MaxPayloadSize
func ValidatePayload(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload cannot be empty")
	}

	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("payload must not exceed %d bytes, got %d", MaxPayloadSize, len(payload))
	}

	return nil
}

// ValidateIntent проверяет запрос на запись целиком
func ValidateIntent(intent models.WriteIntent) error {
	if err := ValidateEntityID(intent.EntityID); err != nil {
		return err
	}
	if err := ValidateActor(intent.Actor); err != nil {
		return err
	}
	if intent.BaseVersion < 1 {
		return fmt.Errorf("base version must be at least 1, got %d", intent.BaseVersion)
	}
	return ValidatePayload(intent.ProposedPayload)
}

// ValidatePlay проверяет, что payload является корректной схемой (play).
// Используется CLI перед отправкой файла; движок payload не интерпретирует.
func ValidatePlay(payload []byte) (*models.Play, error) {
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}

	var play models.Play
	if err := json.Unmarshal(payload, &play); err != nil {
		return nil, fmt.Errorf("play is not valid JSON: %w", err)
	}

	if play.Name == "" {
		return nil, fmt.Errorf("play name is required")
	}
	if play.Formation == "" {
		return nil, fmt.Errorf("play formation is required")
	}

	for i, route := range play.Routes {
		if route.Player == "" {
			return nil, fmt.Errorf("route %d: player is required", i)
		}
		if len(route.Waypoints) == 0 {
			return nil, fmt.Errorf("route %d: at least one waypoint is required", i)
		}
	}

	return &play, nil
}
