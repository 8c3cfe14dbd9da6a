package entity

import (
	"context"

	"go.uber.org/zap"

	"github.com/AlexOwl/jtechdigital-ha/internal/matrix"
)

// MasterPlayer represents the matrix itself: master power only.
type MasterPlayer struct {
	coordinator *matrix.Coordinator
	logger      *zap.Logger
}

// NewMasterPlayer creates the master power entity.
func NewMasterPlayer(coordinator *matrix.Coordinator, logger *zap.Logger) *MasterPlayer {
	return &MasterPlayer{
		coordinator: coordinator,
		logger:      logger.Named("master"),
	}
}

// State reports on/off from the combined status; unavailable before the
// first completed cycle.
func (m *MasterPlayer) State() PlayerState {
	if m.coordinator.LastUpdated().IsZero() {
		return StateUnavailable
	}
	if m.coordinator.Status().Power {
		return StateOn
	}
	return StateOff
}

// TurnOn powers the matrix on and schedules a refresh.
func (m *MasterPlayer) TurnOn(ctx context.Context) error {
	defer m.coordinator.RequestRefresh()

	_, err := m.coordinator.PowerOn(ctx)
	if err != nil {
		m.logger.Error("Power on failed", zap.Error(err))
	}
	return err
}

// TurnOff powers the matrix off and schedules a refresh.
func (m *MasterPlayer) TurnOff(ctx context.Context) error {
	defer m.coordinator.RequestRefresh()

	_, err := m.coordinator.PowerOff(ctx)
	if err != nil {
		m.logger.Error("Power off failed", zap.Error(err))
	}
	return err
}

// Reboot restarts the device and schedules a refresh.
func (m *MasterPlayer) Reboot(ctx context.Context) error {
	defer m.coordinator.RequestRefresh()

	_, err := m.coordinator.RebootDevice(ctx)
	if err != nil {
		m.logger.Error("Reboot failed", zap.Error(err))
	}
	return err
}
