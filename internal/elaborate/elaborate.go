package elaborate

import (
	"errors"

	"github.com/danmuck/memmap/internal/memmap"
	"github.com/rs/zerolog/log"
)

// Summary describes a finished elaboration.
type Summary struct {
	// End is the running cursor after the last field.
	End    uint64
	Fields int
	Leaves int
	// Bytes is the sum of all leaf footprints.
	Bytes uint64
	// Low and High bound the occupied bytes when Occupied is set.
	Low      uint64
	High     uint64
	Occupied bool
}

// Elaborate resolves the address, access and range of root and every
// descendant in place and validates declared values against their types.
func Elaborate(root *memmap.Field, protocol memmap.Protocol) error {
	_, err := Walk(root, protocol)
	return err
}

// Document elaborates the root field of doc under its own protocol.
func Document(doc *memmap.Document) error {
	if doc == nil {
		return schemaError("nil document")
	}
	return Elaborate(&doc.Root, doc.Protocol)
}

// Walk is Elaborate returning a Summary of the resolved layout. The first
// failure in pre-order aborts the walk; fields visited before it keep their
// resolved values.
func Walk(root *memmap.Field, protocol memmap.Protocol) (Summary, error) {
	if root == nil {
		return Summary{}, schemaError("nil root field")
	}
	log.Debug().
		Str("protocol", protocol.Name).
		Uint64("address_max", protocol.AddressMax).
		Uint8("data_min", protocol.DataMin).
		Str("root", root.Name).
		Msg("elaboration started")

	w := &walker{protocol: protocol}
	inherited := memmap.AccessRead
	if root.Access != nil {
		inherited = *root.Access
	}
	if root.Address != nil {
		w.cursor = *root.Address
	}

	occupied, err := w.visit(root.Name, root, inherited)
	if err != nil {
		ev := log.Error().Err(err).Str("protocol", protocol.Name).Str("outcome", Outcome(err))
		var oe *OverflowError
		if errors.As(err, &oe) {
			ev = ev.Uint64("address", oe.Address).Uint64("footprint", oe.Footprint)
		}
		ev.Msg("elaboration failed")
		return w.summary, err
	}

	w.summary.End = w.cursor
	w.summary.Low, w.summary.High, w.summary.Occupied = occupied.lo, occupied.hi, occupied.ok
	log.Info().
		Str("protocol", protocol.Name).
		Int("fields", w.summary.Fields).
		Uint64("bytes", w.summary.Bytes).
		Uint64("end", w.summary.End).
		Msg("elaboration complete")
	return w.summary, nil
}

type walker struct {
	protocol memmap.Protocol
	cursor   uint64
	summary  Summary
}

func (w *walker) visit(path string, f *memmap.Field, inherited memmap.Access) (span, error) {
	w.summary.Fields++
	if f.Type.Kind == memmap.KindSet {
		return w.visitSet(path, f, inherited)
	}
	return w.visitLeaf(path, f, inherited)
}

func (w *walker) visitSet(path string, f *memmap.Field, inherited memmap.Access) (span, error) {
	if f.Contains == nil {
		return span{}, at(path, schemaError("field type 'set' was provided, but key 'contains' was not"))
	}
	if f.Value != nil {
		return span{}, at(path, schemaError("set fields carry no value"))
	}
	access := resolveAccess(f, inherited)
	if f.Address != nil {
		w.cursor = *f.Address
	} else {
		addr := w.cursor
		f.Address = &addr
	}

	var occupied span
	for i, child := range f.Contains {
		if child == nil {
			return span{}, at(path, schemaError("contains[%d] is empty", i))
		}
		s, err := w.visit(path+"."+child.Name, child, access)
		if err != nil {
			return span{}, err
		}
		occupied = occupied.merge(s)
	}
	f.Range = occupied.String()
	return occupied, nil
}

func (w *walker) visitLeaf(path string, f *memmap.Field, inherited memmap.Access) (span, error) {
	if f.Contains != nil {
		return span{}, at(path, schemaError("type %s cannot contain fields", f.Type.Kind))
	}
	if err := checkType(f.Type); err != nil {
		return span{}, at(path, err)
	}
	if f.Value != nil {
		if err := CheckValue(f.Type, *f.Value); err != nil {
			return span{}, at(path, err)
		}
	}

	resolveAccess(f, inherited)
	addr := w.cursor
	if f.Address != nil {
		addr = *f.Address
	} else {
		f.Address = &addr
	}

	footprint, err := Footprint(f.Type, w.protocol.DataMin)
	if err != nil {
		return span{}, at(path, err)
	}
	if overflows(addr, footprint, w.protocol.AddressMax) {
		return span{}, &OverflowError{
			Field:      path,
			Address:    addr,
			Footprint:  footprint,
			AddressMax: w.protocol.AddressMax,
		}
	}

	f.Range = Describe(f.Type)
	w.cursor = addr + footprint
	w.summary.Leaves++
	w.summary.Bytes += footprint
	return leafSpan(addr, footprint), nil
}

func resolveAccess(f *memmap.Field, inherited memmap.Access) memmap.Access {
	if f.Access == nil {
		a := inherited
		f.Access = &a
	}
	return *f.Access
}

// at stamps the field path onto a FieldError.
func at(path string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Field == "" {
		fe.Field = path
	}
	return err
}
