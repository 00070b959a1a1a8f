package world

import (
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/ledger"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

// StructureKind names a type of building (stockpile, sawmill...)
type StructureKind string

// StructureSpec describes a building to place
type StructureSpec struct {
	Kind     StructureKind
	Key      string
	Position grid.Point
	Width    int
	Height   int
	Capacity map[resource.Kind]uint32
	Initial  map[resource.Kind]uint32
}

// Structure is a placed building with a storage container. Position is the
// footprint's top-left tile and doubles as the access point workers path to.
type Structure struct {
	kind      StructureKind
	key       string
	position  grid.Point
	footprint grid.Rect
	storage   *ledger.Storage

	unsubscribe func()
}

func (s *Structure) Kind() StructureKind      { return s.kind }
func (s *Structure) Key() string              { return s.key }
func (s *Structure) Position() grid.Point     { return s.position }
func (s *Structure) Footprint() grid.Rect     { return s.footprint }
func (s *Structure) Storage() *ledger.Storage { return s.storage }
