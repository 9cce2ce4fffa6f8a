package events

import (
	"github.com/rs/zerolog"

	"pixelforge/pkg/types"
)

// LogPublisher writes events to a zerolog logger. Progress events are logged
// at debug level, everything else at info.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(e Event) {
	ev := p.Logger.Info()
	switch e.Name {
	case types.EventOperationProgress, types.EventModelDownloadProgress:
		ev = p.Logger.Debug()
	}
	if e.ModelID != "" {
		ev = ev.Str("model", e.ModelID)
	}
	switch pl := e.Payload.(type) {
	case types.OperationProgress:
		ev = ev.Str("stage", pl.Stage).Int("percent", pl.Percent)
	case types.DownloadProgress:
		ev = ev.Int("percent", pl.Percent).Uint64("downloaded", pl.DownloadedBytes).Uint64("total", pl.TotalBytes)
	}
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Str("event", e.Name).Msg("")
}
