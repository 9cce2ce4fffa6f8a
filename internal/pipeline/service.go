// Package pipeline implements the user-facing operations: each one makes
// sure its model is loaded, converts the image to the model's tensor layout,
// runs inference under the session lock and writes the decoded result.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"pixelforge/internal/apperr"
	"pixelforge/internal/config"
	"pixelforge/internal/events"
	"pixelforge/internal/imaging"
	"pixelforge/internal/provision"
	"pixelforge/internal/registry"
	"pixelforge/internal/session"
	"pixelforge/internal/tensor"
	"pixelforge/pkg/types"
)

// Config wires a Service. Zero tile and size values take config defaults.
type Config struct {
	Provisioner  *provision.Provisioner
	Sessions     *session.Registry
	Saver        imaging.Saver
	Publisher    events.Publisher
	Logger       zerolog.Logger
	TileSize     int
	TileOverlap  int
	StyleMaxSide int
	// Labels overrides the ImageNet class names used by Classify.
	Labels []string
}

// Service exposes the core operations.
type Service struct {
	prov     *provision.Provisioner
	reg      *registry.Registry
	sessions *session.Registry
	saver    imaging.Saver
	pub      events.Publisher
	log      zerolog.Logger

	tileSize     int
	tileOverlap  int
	styleMaxSide int
	labels       []string
}

func New(cfg Config) *Service {
	s := &Service{
		prov:         cfg.Provisioner,
		reg:          cfg.Provisioner.Registry(),
		sessions:     cfg.Sessions,
		saver:        cfg.Saver,
		pub:          events.OrNoop(cfg.Publisher),
		log:          cfg.Logger,
		tileSize:     cfg.TileSize,
		tileOverlap:  cfg.TileOverlap,
		styleMaxSide: cfg.StyleMaxSide,
		labels:       cfg.Labels,
	}
	if s.tileSize <= 0 {
		s.tileSize = config.DefaultTileSize
	}
	if s.tileOverlap < 0 || s.tileOverlap >= s.tileSize {
		s.tileOverlap = config.DefaultTileOverlap
		if s.tileOverlap >= s.tileSize {
			s.tileOverlap = 0
		}
	}
	if s.styleMaxSide <= 0 {
		s.styleMaxSide = config.DefaultStyleMaxSide
	}
	if len(s.labels) == 0 {
		s.labels = tensor.ImageNetLabels()
	}
	return s
}

func (s *Service) progress(stage string, pct int) {
	s.pub.Publish(events.Progress(stage, pct))
}

// run executes one inference pass on modelID and returns the first output.
func (s *Service) run(ctx context.Context, modelID string, inputs ...tensor.Tensor) (tensor.Tensor, error) {
	var out tensor.Tensor
	err := s.sessions.With(ctx, modelID, func(e session.Engine) error {
		outs, err := e.Run(inputs)
		if err != nil {
			return apperr.Wrap(apperr.KindInferenceFailed, err)
		}
		if len(outs) == 0 {
			return apperr.InferenceFailed("%s returned no outputs", modelID)
		}
		out = outs[0]
		return nil
	})
	return out, err
}

// ModelsStatus lists the catalog with install state.
func (s *Service) ModelsStatus() ([]types.ModelStatus, error) {
	return s.prov.Status()
}

// DownloadModel installs a model, publishing download progress events.
func (s *Service) DownloadModel(ctx context.Context, id string) error {
	return s.PullModel(ctx, id, nil)
}

// PullModel is DownloadModel with a per-chunk progress callback. A loaded
// engine is dropped when its file was rewritten.
func (s *Service) PullModel(ctx context.Context, id string, progress provision.ProgressFunc) error {
	res, err := s.prov.Install(ctx, id, progress)
	if err != nil {
		return err
	}
	if res.Downloaded {
		if err := s.sessions.Unload(id); err != nil {
			s.log.Warn().Err(err).Str("model", id).Bool("replaced", res.Replaced).Msg("unload after download")
		}
	}
	return nil
}

// DeleteModel removes a model file and unloads its engine. Deleting a model
// that is not installed succeeds.
func (s *Service) DeleteModel(id string) error {
	if err := s.prov.Delete(id); err != nil {
		return err
	}
	if err := s.sessions.Unload(id); err != nil {
		s.log.Warn().Err(err).Str("model", id).Msg("unload after delete")
	}
	return nil
}

// StyleIDs lists the accepted style model ids.
func (s *Service) StyleIDs() []string { return s.reg.StyleIDs() }

// LoadedModels lists the ids with a live engine.
func (s *Service) LoadedModels() []string { return s.sessions.Loaded() }

// Ready reports whether the service can accept work. A poisoned session
// registry stays unusable until restart.
func (s *Service) Ready() bool { return !s.sessions.Poisoned() }
