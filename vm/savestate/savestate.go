// Package savestate captures and restores the values of a program's script
// globals, the part of a savegame owned by the script VM.
package savestate

import (
	"errors"
	"fmt"

	"github.com/chazu/daedalus/dat"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("daedalus.savestate")

// ErrEmpty is returned when decoding zero bytes.
var ErrEmpty = errors.New("savestate: empty input")

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// Snapshot holds the values of every script global at one point in time.
type Snapshot struct {
	ID      string `cbor:"1,keyasint"`
	Version byte   `cbor:"2,keyasint"` // program format version
	Count   int    `cbor:"3,keyasint"` // symbols in the program
	Vars    []Var  `cbor:"4,keyasint,omitempty"`
}

// Var is the saved value of one global.
type Var struct {
	Name    string         `cbor:"1,keyasint"`
	Type    dat.SymbolType `cbor:"2,keyasint"`
	Ints    []int32        `cbor:"3,keyasint,omitempty"`
	Floats  []float32      `cbor:"4,keyasint,omitempty"`
	Strings []string       `cbor:"5,keyasint,omitempty"`
}

// saved reports whether s holds state worth persisting: a named variable
// with its own storage.
func saved(s *dat.Symbol) bool {
	if s.Name == "" || s.Has(dat.FlagConst) || s.IsClassVar() {
		return false
	}
	switch s.Type() {
	case dat.TypeInt, dat.TypeFloat, dat.TypeString:
		return true
	}
	return false
}

// Capture records the values of file's globals.
func Capture(file *dat.File) *Snapshot {
	snap := &Snapshot{
		ID:      uuid.NewString(),
		Version: file.Version(),
		Count:   file.Len(),
	}
	for _, s := range file.Symbols() {
		if !saved(s) {
			continue
		}
		v := Var{Name: s.Name, Type: s.Type()}
		switch s.Type() {
		case dat.TypeInt:
			v.Ints = s.Ints().Slice()
		case dat.TypeFloat:
			v.Floats = s.Floats().Slice()
		case dat.TypeString:
			v.Strings = s.Strings().Slice()
		}
		snap.Vars = append(snap.Vars, v)
	}
	log.Debugf("captured %d globals into snapshot %s", len(snap.Vars), snap.ID)
	return snap
}

// Restore writes the values in snap back to file's globals and returns the
// number restored. Names are matched case-insensitively; globals that no
// longer exist or changed type are skipped.
func Restore(file *dat.File, snap *Snapshot) int {
	if snap.Version != file.Version() {
		log.Warningf("snapshot %s: program version %d, want %d", snap.ID, snap.Version, file.Version())
	}
	restored := 0
	for _, v := range snap.Vars {
		i := file.SymbolIndexByName(v.Name)
		if i == dat.NotFound {
			log.Warningf("snapshot %s: global %s no longer exists", snap.ID, v.Name)
			continue
		}
		s := file.SymbolByIndex(i)
		switch {
		case !saved(s):
			log.Warningf("snapshot %s: %s is no longer a variable", snap.ID, v.Name)
			continue
		case s.Type() != v.Type:
			log.Warningf("snapshot %s: global %s changed from %s to %s", snap.ID, v.Name, v.Type, s.Type())
			continue
		}
		switch v.Type {
		case dat.TypeInt:
			s.Ints().Assign(v.Ints)
		case dat.TypeFloat:
			s.Floats().Assign(v.Floats)
		case dat.TypeString:
			s.Strings().Assign(v.Strings)
		}
		restored++
	}
	return restored
}

// ---------------------------------------------------------------------------
// Wire format
// ---------------------------------------------------------------------------

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("savestate: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Marshal serializes a snapshot to CBOR bytes.
func Marshal(snap *Snapshot) ([]byte, error) {
	return encMode.Marshal(snap)
}

// Unmarshal deserializes a snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("savestate: unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
