// Package exportregistry wires every concrete exporter (pkg/exporters/...)
// into one shared registry, along with the small set of collaborators they
// pass hints through (the translation key-hint collector, the scene image
// hash registry), mirroring the teacher's pattern of a single startup-time
// assembly function rather than scattering registration calls across
// main packages (spec.md §9 "Global state: exporter registry...
// initialize-once at startup").
package exportregistry

import (
	"github.com/gdretool/gdre-go/pkg/exporters"
	"github.com/gdretool/gdre-go/pkg/exporters/audio"
	"github.com/gdretool/gdre-go/pkg/exporters/nativeext"
	resexporter "github.com/gdretool/gdre-go/pkg/exporters/resource"
	"github.com/gdretool/gdre-go/pkg/exporters/scene"
	"github.com/gdretool/gdre-go/pkg/exporters/script"
	"github.com/gdretool/gdre-go/pkg/exporters/texture"
	"github.com/gdretool/gdre-go/pkg/exporters/translation"
	"github.com/gdretool/gdre-go/pkg/project"
	"github.com/hashicorp/go-hclog"
)

// Collaborators groups the cross-exporter shared state that New both
// creates and wires in, so a caller (the export command, or a future GUI
// shell) can still reach them after the registry is built.
type Collaborators struct {
	Hints  *translation.KeyHintCollector
	Images *scene.ImageHashRegistry
}

// New builds the full exporter registry: resource, translation, scene,
// texture, the two audio exporters, script, and native-extension. uids is
// shared with the project reconstructor so script and orchestrator
// postprocessing agree on UIDs; packageRoot and source feed the
// native-extension exporter's library materialization (nil source falls
// back to nativeext.NoopSource).
func New(logger hclog.Logger, uids *project.Cache, packageRoot string, source nativeext.LibrarySource) (*exporters.Registry, *Collaborators) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if source == nil {
		source = nativeext.NoopSource{}
	}

	collab := &Collaborators{
		Hints:  translation.NewKeyHintCollector(),
		Images: scene.NewImageHashRegistry(),
	}

	reg := exporters.NewRegistry()
	reg.Register(resexporter.New(logger))
	reg.Register(audio.NewStream(logger))
	reg.Register(audio.NewSample(logger))
	reg.Register(translation.New(logger, collab.Hints))
	reg.Register(scene.New(logger, collab.Images))
	reg.Register(texture.New(logger))
	reg.Register(script.New(logger, uids, collab.Hints))
	reg.Register(nativeext.New(logger, packageRoot, source))

	return reg, collab
}
