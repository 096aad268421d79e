// Package entity provides the record base type shared by all persisted entities
// and reflective access to their "db"-tagged columns.
package entity

import (
	"context"

	"markonly/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Record is implemented by every entity handled by a markonly.Model.
// Embed *BaseRecord semantics by embedding BaseRecord in the entity struct and
// using the entity through a pointer.
type Record interface {
	GetID() id.ID
	SetID(id.ID)

	// IsNewRecord reports that the record was never inserted or loaded.
	IsNewRecord() bool
	// IsRemoved reports that the row was physically deleted through this instance.
	IsRemoved() bool

	MarkPersisted()
	MarkRemoved()
}

// BaseRecord contains the primary key and in-memory lifecycle flags.
// The flags are not columns; stores set them after insert/load/delete.
type BaseRecord struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	persisted bool
	removed   bool
}

// GetID returns the primary key.
func (b *BaseRecord) GetID() id.ID { return b.ID }

// SetID assigns the primary key.
func (b *BaseRecord) SetID(v id.ID) { b.ID = v }

// IsNewRecord implements Record.
func (b *BaseRecord) IsNewRecord() bool { return !b.persisted }

// IsRemoved implements Record.
func (b *BaseRecord) IsRemoved() bool { return b.removed }

// MarkPersisted is called by stores after a successful insert or load.
func (b *BaseRecord) MarkPersisted() { b.persisted = true }

// MarkRemoved is called after the row was physically deleted.
func (b *BaseRecord) MarkRemoved() { b.removed = true }
