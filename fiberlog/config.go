package fiberlog

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config настройки журналирования запросов
type Config struct {
	Logger *logrus.Logger
	Tags   []string
	// SlowThreshold запросы дольше порога пишутся с уровнем Warn, 0 отключает проверку
	SlowThreshold time.Duration
}

var ConfigDefault = Config{
	Tags: []string{
		TagStatus,
		TagLatency,
		TagMethod,
		TagPath,
		RequestID,
	},
	SlowThreshold: 3 * time.Second,
}
