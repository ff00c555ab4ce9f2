//go:build nospeaker
// +build nospeaker

// Package speaker plays audio through the host sound system using miniaudio.
//
// This build was made with the nospeaker tag, for hosts without the cgo
// toolchain miniaudio needs.
package speaker

import (
	"fmt"

	"github.com/seashells/side/pkg/driver/availability"
)

// Initialize reports that speaker support was left out of this build.
func Initialize() error {
	return fmt.Errorf("speaker: %w", availability.ErrUnimplemented)
}
