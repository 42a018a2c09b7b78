package llm

import (
	"sync/atomic"

	"zhujian/internal/bootstrap/config"
)

// Settings is an atomic holder for the chat credentials, swapped live when
// the config file changes.
type Settings struct {
	v atomic.Value
}

func NewSettings(cfg config.DoubaoConfig) *Settings {
	s := &Settings{}
	s.v.Store(cfg)
	return s
}

func NewSettingsFromConfig(cfg config.Config) *Settings {
	return NewSettings(cfg.Doubao)
}

func (s *Settings) Current() config.DoubaoConfig {
	cfg, _ := s.v.Load().(config.DoubaoConfig)
	return cfg
}

func (s *Settings) Update(cfg config.DoubaoConfig) {
	s.v.Store(cfg)
}
