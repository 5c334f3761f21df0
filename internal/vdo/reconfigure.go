package vdo

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-vdo/internal/geometry"
	"github.com/deploymenttheory/go-vdo/internal/interfaces"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/superblock"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// updateSuperBlockState is the only post-format mutation: it rewrites the
// single super block with a new lifecycle state.
func updateSuperBlockState(layer interfaces.Layer, requireReadOnly bool,
	newState types.VDOState) error {

	g, err := geometry.Load(layer)
	if err != nil {
		return err
	}
	sb, err := superblock.Load(layer, g.DataRegionStart())
	if err != nil {
		return err
	}

	if requireReadOnly && sb.Component.State != types.StateReadOnlyMode {
		return errors.Wrapf(status.ErrNotReadOnly,
			"cannot force rebuild while the volume is %s", sb.Component.State)
	}

	logrus.WithFields(logrus.Fields{
		"from": sb.Component.State,
		"to":   newState,
	}).Debug("updating VDO state")

	sb.Component.State = newState
	return superblock.Save(layer, g.DataRegionStart(), sb)
}

// ForceRebuild marks a read-only volume for a full rebuild on its next
// start. It refuses to touch a volume that is not in read-only mode.
func ForceRebuild(layer interfaces.Layer) error {
	return updateSuperBlockState(layer, true, types.StateForceRebuild)
}

// SetReadOnlyMode puts the volume into read-only mode.
func SetReadOnlyMode(layer interfaces.Layer) error {
	return updateSuperBlockState(layer, false, types.StateReadOnlyMode)
}
