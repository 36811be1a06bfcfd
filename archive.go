package notestore

import (
	"fmt"

	"github.com/google/uuid"
)

// Wrapper type names and field keys used by the archive encoder.
const (
	typeUUID   = "com.apple.CRDT.NSUUID"
	typeString = "com.apple.CRDT.NSString"

	keyUUIDIndex   = "UUIDIndex"
	keySelf        = "self"
	keyRows        = "crRows"
	keyColumns     = "crColumns"
	keyCellColumns = "cellColumns"
)

// UTITable is the attachment type identifier of embedded tables. A run
// whose attachment carries this UTI renders through ParseArchive and
// Archive.ResolveTable.
const UTITable = "com.apple.notes.table"

// RefKind tags the active variant of a Ref.
type RefKind int

const (
	RefObjectIndex RefKind = iota
	RefString
	RefUint
)

// Ref points at another archive object, or carries an immediate string or
// unsigned integer value.
type Ref struct {
	Kind  RefKind
	Index int
	Str   string
	Uint  uint64
}

// DictEntry is one key/value pair of a dictionary object.
type DictEntry struct {
	Key   Ref
	Value Ref
}

// CustomEntry is one field of a custom typed record; KeyIndex names the
// field through the archive's key item table.
type CustomEntry struct {
	KeyIndex int
	Value    Ref
}

// Custom is a typed record; TypeIndex names the record type through the
// archive's type item table.
type Custom struct {
	TypeIndex int
	Entries   []CustomEntry
}

// SetAttachment is one ordering entry of an ordered set. Tombstoned members
// keep their attachment record; liveness is decided by the element map.
type SetAttachment struct {
	UUID []byte
}

// OrderedSet is the replicated list-with-identity structure. Elements holds
// live membership, Contents maps every uuid ever attached to its value, and
// Attachments is the stored ordering.
type OrderedSet struct {
	Attachments []SetAttachment
	Contents    []DictEntry
	Elements    []DictEntry
}

// Object is an archive graph node with exactly one active variant.
type Object struct {
	Register   *Ref
	Dictionary []DictEntry
	Literal    *string
	Custom     *Custom
	Set        *OrderedSet

	dict bool // distinguishes an empty dictionary from an absent one
}

// Archive is the decoded object graph of a mergeable-data blob, together
// with its key, type and uuid item tables.
type Archive struct {
	Objects []Object
	Keys    []string
	Types   []string
	UUIDs   [][]byte
}

// Table is a resolved table: ordered row and column identifiers plus a
// (column, row)-addressed cell map. Absent cells are empty.
type Table struct {
	Rows    []string
	Columns []string
	Cells   map[CellKey]string
}

// CellKey addresses one table cell.
type CellKey struct {
	Column string
	Row    string
}

// Cell returns the value at (column, row), or "" when the cell is absent.
func (t *Table) Cell(column, row string) string {
	return t.Cells[CellKey{Column: column, Row: row}]
}

// ParseArchive opens a mergeable-data blob and projects it into an Archive.
func ParseArchive(blob []byte) (*Archive, error) {
	raw, err := OpenBlob(blob, 0)
	if err != nil {
		return nil, err
	}
	v, err := Decode(raw, ArchiveSchema)
	if err != nil {
		return nil, err
	}
	return ProjectArchive(v)
}

// ProjectArchive projects a Value decoded against ArchiveSchema into an
// Archive, rejecting objects with zero or multiple active variants.
func ProjectArchive(v Value) (*Archive, error) {
	obj, ok := v.Msg("mergableDataObject")
	if !ok {
		return nil, fmt.Errorf("%w: no mergeable data object", ErrUnresolvableArchive)
	}
	data, ok := obj.Msg("mergeableDataObjectData")
	if !ok {
		return nil, fmt.Errorf("%w: no object data", ErrUnresolvableArchive)
	}

	a := &Archive{}
	for _, item := range data.List("mergeableDataObjectKeyItem") {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string key item", ErrUnresolvableArchive)
		}
		a.Keys = append(a.Keys, s)
	}
	for _, item := range data.List("mergeableDataObjectTypeItem") {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string type item", ErrUnresolvableArchive)
		}
		a.Types = append(a.Types, s)
	}
	for _, item := range data.List("mergeableDataObjectUuidItem") {
		b, ok := item.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: non-bytes uuid item", ErrUnresolvableArchive)
		}
		a.UUIDs = append(a.UUIDs, b)
	}
	for i, item := range data.List("mergeableDataObjectEntry") {
		ev, ok := item.(Value)
		if !ok {
			return nil, fmt.Errorf("%w: object %d is not a message", ErrUnresolvableArchive, i)
		}
		o, err := projectObject(ev)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		a.Objects = append(a.Objects, o)
	}
	return a, nil
}

func projectObject(v Value) (Object, error) {
	var o Object
	variants := 0

	if reg, ok := v.Msg("registerLatest"); ok {
		contents, ok := reg.Msg("contents")
		if !ok {
			return o, fmt.Errorf("%w: register without contents", ErrUnresolvableArchive)
		}
		ref, err := projectRef(contents)
		if err != nil {
			return o, err
		}
		o.Register = &ref
		variants++
	}
	if dict, ok := v.Msg("dictionary"); ok {
		entries, err := projectDict(dict)
		if err != nil {
			return o, err
		}
		o.Dictionary = entries
		o.dict = true
		variants++
	}
	if note, ok := v.Msg("note"); ok {
		text, _ := note.Str("noteText")
		o.Literal = &text
		variants++
	}
	if cm, ok := v.Msg("customMap"); ok {
		c := &Custom{}
		if t, ok := cm.Uint("type"); ok {
			c.TypeIndex = int(t)
		}
		for _, item := range cm.List("mapEntry") {
			ev, ok := item.(Value)
			if !ok {
				return o, fmt.Errorf("%w: bad custom map entry", ErrUnresolvableArchive)
			}
			val, ok := ev.Msg("value")
			if !ok {
				return o, fmt.Errorf("%w: custom map entry without value", ErrUnresolvableArchive)
			}
			ref, err := projectRef(val)
			if err != nil {
				return o, err
			}
			key, _ := ev.Uint("key")
			c.Entries = append(c.Entries, CustomEntry{KeyIndex: int(key), Value: ref})
		}
		o.Custom = c
		variants++
	}
	if set, ok := v.Msg("orderedSet"); ok {
		s := &OrderedSet{}
		if ordering, ok := set.Msg("ordering"); ok {
			if arr, ok := ordering.Msg("array"); ok {
				for _, item := range arr.List("attachment") {
					av, ok := item.(Value)
					if !ok {
						return o, fmt.Errorf("%w: bad ordering attachment", ErrUnresolvableArchive)
					}
					u, _ := av.Bytes("uuid")
					s.Attachments = append(s.Attachments, SetAttachment{UUID: u})
				}
			}
			if contents, ok := ordering.Msg("contents"); ok {
				entries, err := projectDict(contents)
				if err != nil {
					return o, err
				}
				s.Contents = entries
			}
		}
		if elements, ok := set.Msg("elements"); ok {
			entries, err := projectDict(elements)
			if err != nil {
				return o, err
			}
			s.Elements = entries
		}
		o.Set = s
		variants++
	}

	if variants != 1 {
		return o, fmt.Errorf("%w: object has %d active variants, want 1", ErrUnresolvableArchive, variants)
	}
	return o, nil
}

func projectDict(v Value) ([]DictEntry, error) {
	var entries []DictEntry
	for _, item := range v.List("element") {
		ev, ok := item.(Value)
		if !ok {
			return nil, fmt.Errorf("%w: bad dictionary element", ErrUnresolvableArchive)
		}
		kv, ok := ev.Msg("key")
		if !ok {
			return nil, fmt.Errorf("%w: dictionary element without key", ErrUnresolvableArchive)
		}
		vv, ok := ev.Msg("value")
		if !ok {
			return nil, fmt.Errorf("%w: dictionary element without value", ErrUnresolvableArchive)
		}
		key, err := projectRef(kv)
		if err != nil {
			return nil, err
		}
		val, err := projectRef(vv)
		if err != nil {
			return nil, err
		}
		entries = append(entries, DictEntry{Key: key, Value: val})
	}
	return entries, nil
}

func projectRef(v Value) (Ref, error) {
	var ref Ref
	variants := 0
	if idx, ok := v.Uint("objectIndex"); ok {
		ref = Ref{Kind: RefObjectIndex, Index: int(idx)}
		variants++
	}
	if s, ok := v.Str("stringValue"); ok {
		ref = Ref{Kind: RefString, Str: s}
		variants++
	}
	if u, ok := v.Uint("unsignedIntegerValue"); ok {
		ref = Ref{Kind: RefUint, Uint: u}
		variants++
	}
	if variants != 1 {
		return ref, fmt.Errorf("%w: ref has %d active variants, want 1", ErrUnresolvableArchive, variants)
	}
	return ref, nil
}

// resolver walks the object graph. visiting is the recursion stack of
// object indices; revisiting one means the graph has a cycle.
type resolver struct {
	a        *Archive
	visiting map[int]bool
}

// ResolveTable resolves the archive's root object into a concrete table.
// The root must be a table-typed record carrying ordered row identifiers,
// ordered column identifiers, and a column→row→cell mapping.
func (a *Archive) ResolveTable() (*Table, error) {
	if len(a.Objects) == 0 {
		return nil, fmt.Errorf("%w: archive has no objects", ErrUnresolvableArchive)
	}
	r := &resolver{a: a, visiting: make(map[int]bool)}
	root, err := r.object(0)
	if err != nil {
		return nil, err
	}
	fields, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root object is not a table record", ErrUnresolvableArchive)
	}

	t := &Table{Cells: make(map[CellKey]string)}
	if t.Rows, err = identifierList(fields, keyRows); err != nil {
		return nil, err
	}
	if t.Columns, err = identifierList(fields, keyColumns); err != nil {
		return nil, err
	}

	cellColumns, ok := fields[keyCellColumns].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrUnresolvableArchive, keyCellColumns)
	}
	for col, byRow := range cellColumns {
		rows, ok := byRow.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: column %s cells are not a dictionary", ErrUnresolvableArchive, col)
		}
		for row, cell := range rows {
			text, ok := cell.(string)
			if !ok {
				return nil, fmt.Errorf("%w: cell (%s, %s) is not text", ErrUnresolvableArchive, col, row)
			}
			t.Cells[CellKey{Column: col, Row: row}] = text
		}
	}
	return t, nil
}

func identifierList(fields map[string]any, key string) ([]string, error) {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrUnresolvableArchive, key)
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		id, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s entry is not an identifier", ErrUnresolvableArchive, key)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *resolver) ref(ref Ref) (any, error) {
	switch ref.Kind {
	case RefObjectIndex:
		return r.object(ref.Index)
	case RefString:
		return ref.Str, nil
	case RefUint:
		return ref.Uint, nil
	}
	return nil, fmt.Errorf("%w: unknown ref kind %d", ErrUnresolvableArchive, ref.Kind)
}

func (r *resolver) object(i int) (any, error) {
	if i < 0 || i >= len(r.a.Objects) {
		return nil, fmt.Errorf("%w: object index %d out of range", ErrUnresolvableArchive, i)
	}
	if r.visiting[i] {
		return nil, fmt.Errorf("%w: cyclic reference through object %d", ErrUnresolvableArchive, i)
	}
	r.visiting[i] = true
	defer delete(r.visiting, i)

	o := &r.a.Objects[i]
	switch {
	case o.Register != nil:
		// Last-writer-wins cell: only the current value is reachable.
		return r.ref(*o.Register)
	case o.dict:
		return r.dictionary(o.Dictionary)
	case o.Literal != nil:
		return *o.Literal, nil
	case o.Custom != nil:
		return r.custom(o.Custom)
	case o.Set != nil:
		return r.orderedSet(o.Set)
	}
	return nil, fmt.Errorf("%w: object %d has no resolvable variant", ErrUnresolvableArchive, i)
}

func (r *resolver) dictionary(entries []DictEntry) (map[string]any, error) {
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		key, err := r.ref(e.Key)
		if err != nil {
			return nil, err
		}
		ks, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: dictionary key is not a string", ErrUnresolvableArchive)
		}
		val, err := r.ref(e.Value)
		if err != nil {
			return nil, err
		}
		out[ks] = val
	}
	return out, nil
}

func (r *resolver) custom(c *Custom) (any, error) {
	fields := make(map[string]any, len(c.Entries))
	for _, e := range c.Entries {
		if e.KeyIndex < 0 || e.KeyIndex >= len(r.a.Keys) {
			return nil, fmt.Errorf("%w: key index %d out of range", ErrUnresolvableArchive, e.KeyIndex)
		}
		val, err := r.ref(e.Value)
		if err != nil {
			return nil, err
		}
		fields[r.a.Keys[e.KeyIndex]] = val
	}
	if c.TypeIndex < 0 || c.TypeIndex >= len(r.a.Types) {
		return nil, fmt.Errorf("%w: type index %d out of range", ErrUnresolvableArchive, c.TypeIndex)
	}
	switch r.a.Types[c.TypeIndex] {
	case typeUUID:
		idx, ok := fields[keyUUIDIndex].(uint64)
		if !ok {
			return nil, fmt.Errorf("%w: uuid record without %s", ErrUnresolvableArchive, keyUUIDIndex)
		}
		if idx >= uint64(len(r.a.UUIDs)) {
			return nil, fmt.Errorf("%w: uuid index %d out of range", ErrUnresolvableArchive, idx)
		}
		return formatUUID(r.a.UUIDs[idx])
	case typeString:
		val, ok := fields[keySelf]
		if !ok {
			return nil, fmt.Errorf("%w: string record without %s", ErrUnresolvableArchive, keySelf)
		}
		return val, nil
	default:
		return fields, nil
	}
}

// orderedSet recovers the live, deduplicated member sequence: walk the
// stored ordering, keep entries whose uuid is still in the element map
// (tombstone filter), and drop repeats of an already-included member.
func (r *resolver) orderedSet(s *OrderedSet) ([]any, error) {
	elements, err := r.dictionary(s.Elements)
	if err != nil {
		return nil, err
	}
	contents, err := r.dictionary(s.Contents)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(elements))
	seen := make(map[any]bool, len(elements))
	for _, att := range s.Attachments {
		id, err := formatUUID(att.UUID)
		if err != nil {
			return nil, err
		}
		val, ok := contents[id]
		if !ok {
			continue
		}
		if _, live := elements[id]; !live {
			continue // tombstoned member
		}
		key := any(id)
		switch val.(type) {
		case string, uint64:
			key = val
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, val)
	}
	return out, nil
}

func formatUUID(b []byte) (string, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvableArchive, err)
	}
	return u.String(), nil
}
