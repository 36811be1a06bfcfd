package notestore

// FieldType selects how a field's payload is interpreted after the wire
// layer has consumed it.
type FieldType int

const (
	TypeVarint FieldType = iota
	TypeDouble
	TypeFloat
	TypeBytes
	TypeString
	TypeMessage
)

// FieldDescriptor describes one field of a message. Message-typed fields
// carry the nested schema; everything else leaves Schema nil.
type FieldDescriptor struct {
	Name     string
	Repeated bool
	Type     FieldType
	Schema   Schema
}

// Schema maps field numbers to descriptors. Field numbers are unique within
// one schema level; numbers absent from the schema are legal in the byte
// stream and are skipped.
type Schema map[uint64]FieldDescriptor

func scalar(name string, t FieldType) FieldDescriptor {
	return FieldDescriptor{Name: name, Type: t}
}

func msg(name string, s Schema) FieldDescriptor {
	return FieldDescriptor{Name: name, Type: TypeMessage, Schema: s}
}

func repeated(d FieldDescriptor) FieldDescriptor {
	d.Repeated = true
	return d
}

// Schemas for the note document blob. Field numbers follow the upstream
// notestore protobuf definitions.
var (
	checklistSchema = Schema{
		1: scalar("uuid", TypeBytes),
		2: scalar("done", TypeVarint),
	}

	paragraphStyleSchema = Schema{
		1: scalar("styleType", TypeVarint),
		2: scalar("alignment", TypeVarint),
		4: scalar("indentAmount", TypeVarint),
		5: msg("checklist", checklistSchema),
	}

	attachmentInfoSchema = Schema{
		1: scalar("attachmentIdentifier", TypeString),
		2: scalar("typeUTI", TypeString),
	}

	attributeRunSchema = Schema{
		1:  scalar("length", TypeVarint),
		2:  msg("paragraphStyle", paragraphStyleSchema),
		5:  scalar("fontHints", TypeVarint),
		6:  scalar("underlined", TypeVarint),
		7:  scalar("strikethrough", TypeVarint),
		8:  scalar("superscript", TypeVarint),
		9:  scalar("link", TypeString),
		12: msg("attachmentInfo", attachmentInfoSchema),
	}

	noteSchema = Schema{
		2: scalar("noteText", TypeString),
		5: repeated(msg("attributeRun", attributeRunSchema)),
	}

	// NoteSchema decodes the outer document blob of a single note.
	NoteSchema = Schema{
		2: msg("document", Schema{
			2: scalar("version", TypeVarint),
			3: msg("note", noteSchema),
		}),
	}
)

// Schemas for the mergeable-data archive blob used by tables.
var (
	objectIDSchema = Schema{
		2: scalar("unsignedIntegerValue", TypeVarint),
		4: scalar("stringValue", TypeString),
		6: scalar("objectIndex", TypeVarint),
	}

	dictionaryElementSchema = Schema{
		1: msg("key", objectIDSchema),
		2: msg("value", objectIDSchema),
	}

	dictionarySchema = Schema{
		1: repeated(msg("element", dictionaryElementSchema)),
	}

	orderedSetOrderingSchema = Schema{
		1: msg("array", Schema{
			1: msg("contents", noteSchema),
			2: repeated(msg("attachment", Schema{
				1: scalar("index", TypeVarint),
				2: scalar("uuid", TypeBytes),
			})),
		}),
		2: msg("contents", dictionarySchema),
	}

	objectEntrySchema = Schema{
		1: msg("registerLatest", Schema{
			2: msg("contents", objectIDSchema),
		}),
		6:  msg("dictionary", dictionarySchema),
		10: msg("note", noteSchema),
		13: msg("customMap", Schema{
			1: scalar("type", TypeVarint),
			3: repeated(msg("mapEntry", Schema{
				1: scalar("key", TypeVarint),
				2: msg("value", objectIDSchema),
			})),
		}),
		16: msg("orderedSet", Schema{
			1: msg("ordering", orderedSetOrderingSchema),
			2: msg("elements", dictionarySchema),
		}),
	}

	// ArchiveSchema decodes the mergeable-data blob of a table attachment.
	ArchiveSchema = Schema{
		2: msg("mergableDataObject", Schema{
			3: msg("mergeableDataObjectData", Schema{
				3: repeated(msg("mergeableDataObjectEntry", objectEntrySchema)),
				4: repeated(scalar("mergeableDataObjectKeyItem", TypeString)),
				5: repeated(scalar("mergeableDataObjectTypeItem", TypeString)),
				6: repeated(scalar("mergeableDataObjectUuidItem", TypeBytes)),
			}),
		}),
	}
)
