package usagekit

import "time"

// Activation method labels reported to Metrics.RecordActivation.
const (
	ActivationMethodCode     = "code"
	ActivationMethodCustomer = "customer"
)

// Record repair reason labels reported to Metrics.RecordRepair.
const (
	RepairReasonUnparseable = "unparseable"
	RepairReasonField       = "field"
)

// Metrics defines the interface for tracking quota operations and performance.
type Metrics interface {
	// RecordAllowanceCheck records an allowance check and its duration.
	RecordAllowanceCheck(identity string, allowed bool, duration time.Duration)

	// RecordUse records a counted metered use.
	RecordUse(identity string, premium bool)

	// RecordActivation records a premium activation attempt.
	RecordActivation(method string, success bool)

	// RecordRepair records a silent repair of a corrupt persisted record.
	RecordRepair(reason string)

	// RecordRollover records a daily counter reset.
	RecordRollover(identity string)

	// RecordStorageOperation records the duration and status of a storage operation.
	RecordStorageOperation(operation string, duration time.Duration, err error)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordAllowanceCheck(identity string, allowed bool, duration time.Duration) {}
func (n *NoopMetrics) RecordUse(identity string, premium bool)                                    {}
func (n *NoopMetrics) RecordActivation(method string, success bool)                               {}
func (n *NoopMetrics) RecordRepair(reason string)                                                 {}
func (n *NoopMetrics) RecordRollover(identity string)                                             {}
func (n *NoopMetrics) RecordStorageOperation(operation string, duration time.Duration, err error) {}
