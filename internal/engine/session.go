package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/sirupsen/logrus"
)

// ErrSessionClosed возвращается при работе с уже закрытой сессией
var ErrSessionClosed = errors.New("engine: session is closed")

// Session - настройки одного запуска пайплайна. Открывается один раз на запуск,
// передается по указателю в загрузку, очистку и выгрузку и закрывается в конце.
type Session struct {
	ID uuid.UUID

	timestampLayout    string
	location           *time.Location
	allowedTypes       map[string]struct{}
	defaultVehicleType string
	logger             *logrus.Logger

	mu     sync.Mutex
	closed bool
}

// Open создает сессию из конфигурации
func Open(cfg *config.Config, logger *logrus.Logger) (*Session, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("engine: invalid timezone %q: %w", cfg.Timezone, err)
	}
	if len(cfg.AllowedViolationTypes) == 0 {
		return nil, fmt.Errorf("engine: allow-list of violation types is empty")
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedViolationTypes))
	for _, t := range cfg.AllowedViolationTypes {
		allowed[t] = struct{}{}
	}

	s := &Session{
		ID:                 uuid.New(),
		timestampLayout:    cfg.TimestampLayout,
		location:           loc,
		allowedTypes:       allowed,
		defaultVehicleType: cfg.DefaultVehicleType,
		logger:             logger,
	}
	s.Log().Debug("Engine session opened")
	return s, nil
}

// Close освобождает сессию. Повторный вызов безопасен.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.Log().Debug("Engine session closed")
	return nil
}

// Check возвращает ErrSessionClosed, если сессия уже закрыта
func (s *Session) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// Log возвращает логгер с полем session_id
func (s *Session) Log() *logrus.Entry {
	return s.logger.WithField("session_id", s.ID)
}

func (s *Session) TimestampLayout() string { return s.timestampLayout }

func (s *Session) Location() *time.Location { return s.location }

func (s *Session) DefaultVehicleType() string { return s.defaultVehicleType }

// Allowed сообщает, входит ли тип нарушения в разрешенный список
func (s *Session) Allowed(violationType string) bool {
	_, ok := s.allowedTypes[violationType]
	return ok
}
