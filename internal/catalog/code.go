package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ArtifactID identifies one export schema. IDs are unique across the catalog.
type ArtifactID int

// Slot selects which of up to three timeline events in a row a field
// belongs to.
type Slot int

// Record slots.
const (
	Primary Slot = iota + 1
	Secondary
	Tertiary
)

// Slots lists every slot in evaluation order.
var Slots = []Slot{Primary, Secondary, Tertiary}

var slotNames = map[Slot]string{
	Primary:   "primary",
	Secondary: "secondary",
	Tertiary:  "tertiary",
}

func (s Slot) String() string {
	if name, ok := slotNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Slot(%d)", int(s))
}

// UnmarshalYAML reads a slot by name.
func (s *Slot) UnmarshalYAML(value *yaml.Node) error {
	for slot, name := range slotNames {
		if value.Value == name {
			*s = slot
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown slot %q", value.Line, value.Value)
}

// Role is the bodyfile column a resolved value populates.
type Role int

// Field roles. ATime2 through ATime8 hold alternate access times.
const (
	Hash Role = iota + 1
	From
	To
	Size
	ATime
	ATime2
	ATime3
	ATime4
	ATime5
	ATime6
	ATime7
	ATime8
	MTime
	CTime
	BTime
	Detail
	Detail2
	Detail3
	Detail4
	Type
)

// AlternateATimes are the extra run times some artifacts carry, such as
// the previous launches recorded in a prefetch file.
var AlternateATimes = []Role{ATime2, ATime3, ATime4, ATime5, ATime6, ATime7, ATime8}

var roleNames = map[Role]string{
	Hash:    "hash",
	From:    "from",
	To:      "to",
	Size:    "size",
	ATime:   "atime",
	ATime2:  "atime2",
	ATime3:  "atime3",
	ATime4:  "atime4",
	ATime5:  "atime5",
	ATime6:  "atime6",
	ATime7:  "atime7",
	ATime8:  "atime8",
	MTime:   "mtime",
	CTime:   "ctime",
	BTime:   "btime",
	Detail:  "detail",
	Detail2: "detail2",
	Detail3: "detail3",
	Detail4: "detail4",
	Type:    "type",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// UnmarshalYAML reads a role by name.
func (r *Role) UnmarshalYAML(value *yaml.Node) error {
	for role, name := range roleNames {
		if value.Value == name {
			*r = role
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown role %q", value.Line, value.Value)
}

// FieldCode is the composite key of the field catalog. It is comparable and
// used directly as a map key.
type FieldCode struct {
	Artifact ArtifactID
	Slot     Slot
	Role     Role
}

// Code builds a FieldCode.
func Code(artifact ArtifactID, slot Slot, role Role) FieldCode {
	return FieldCode{Artifact: artifact, Slot: slot, Role: role}
}

func (c FieldCode) String() string {
	return fmt.Sprintf("%d/%s/%s", int(c.Artifact), c.Slot, c.Role)
}
