package message

// EntityClass is the coarse semantic classification of an entity, a
// simplified Schema.org-style vocabulary shared across domains so the
// reasoner can apply class-level rules without knowing every entity type.
//
// EntityClass is a plain string kind; it marshals as its string value.
type EntityClass string

const (
	// ClassObject: concrete artifacts. Regulations, directives,
	// contracts, documents, clauses.
	ClassObject EntityClass = "Object"

	// ClassEvent: time-bounded happenings. Enactments, rulings,
	// amendments, repeals, filings.
	ClassEvent EntityClass = "Event"

	// ClassAgent: actors capable of taking action. Regulators, courts,
	// legislators, registrars, parties.
	ClassAgent EntityClass = "Agent"

	// ClassPlace: locations and regions. Jurisdictions, member states,
	// territories, districts.
	ClassPlace EntityClass = "Place"

	// ClassProcess: ongoing activities. Consultations, compliance
	// reviews, transpositions.
	ClassProcess EntityClass = "Process"

	// ClassThing: anything unclassified or ambiguous.
	ClassThing EntityClass = "Thing"
)

func (ec EntityClass) String() string {
	return string(ec)
}

// IsValid reports whether the class is one of the defined constants.
// Matching is exact: classes are capitalized, so "object" is invalid.
func (ec EntityClass) IsValid() bool {
	switch ec {
	case ClassObject, ClassEvent, ClassAgent, ClassPlace, ClassProcess, ClassThing:
		return true
	default:
		return false
	}
}

// EntityRole describes how an entity relates to the message that mentions
// it, so consumers can tell the subject of a message apart from entities
// that merely appear in it.
//
// EntityRole is a plain string kind; it marshals as its string value.
type EntityRole string

const (
	// RolePrimary: the entity the message is about.
	// The regulation in a publication update.
	RolePrimary EntityRole = "primary"

	// RoleObserved: an entity being measured or monitored.
	// The cited regulation in a case-law extraction.
	RoleObserved EntityRole = "observed"

	// RoleComponent: a part of another entity in the message.
	// A clause inside a contract status message.
	RoleComponent EntityRole = "component"

	// RoleSource: the entity that originated the message.
	// The registry that published a regulation.
	RoleSource EntityRole = "source"

	// RoleTarget: the entity affected by the message.
	// The amended regulation in an amendment notice.
	RoleTarget EntityRole = "target"

	// RoleContext: situational context for the message.
	// The jurisdiction in a transposition report.
	RoleContext EntityRole = "context"

	// RoleRelated: connected but fitting no specific role.
	RoleRelated EntityRole = "related"
)

func (er EntityRole) String() string {
	return string(er)
}

// IsValid reports whether the role is one of the defined constants.
// Matching is exact: roles are lowercase, so "PRIMARY" is invalid.
func (er EntityRole) IsValid() bool {
	switch er {
	case RolePrimary, RoleObserved, RoleComponent, RoleSource, RoleTarget, RoleContext, RoleRelated:
		return true
	default:
		return false
	}
}
