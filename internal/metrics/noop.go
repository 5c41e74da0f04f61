package metrics

import (
	"time"

	"zkbattleship/internal/game"
)

type NoopCollector struct{}

var _ game.Metrics = NoopCollector{}

func (NoopCollector) OperationCompleted(string, game.Code, bool) {}
func (NoopCollector) ProofVerified(string, bool, time.Duration)  {}
func (NoopCollector) GameFinished()                              {}
func (NoopCollector) RequestServed(string, int, time.Duration)   {}
