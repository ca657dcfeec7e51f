package message

// Graphable lets a payload declare its own entities and facts. The payload
// states what it contains as RDF-style triples; infrastructure never has to
// guess entities from message types or field names, and new domains join
// the graph by implementing two methods.
//
//	type RegulationPayload struct {
//	    RegulationID string    `json:"regulation_id"`
//	    Jurisdiction string    `json:"jurisdiction"`
//	    InForceFrom  time.Time `json:"in_force_from"`
//	}
//
//	func (p *RegulationPayload) EntityID() string {
//	    return fmt.Sprintf("c360.platform1.legal.registry.regulation.%s", p.RegulationID)
//	}
//
//	func (p *RegulationPayload) Triples() []Triple {
//	    entityID := p.EntityID()
//	    return []Triple{
//	        {Subject: entityID, Predicate: "rdf:type", Object: URI("legal:Regulation")},
//	        {Subject: entityID, Predicate: "legal:jurisdiction", Object: Literal(p.Jurisdiction)},
//	        {Subject: entityID, Predicate: "legal:inForceFrom", Object: TimeLiteral(p.InForceFrom)},
//	    }
//	}
type Graphable interface {
	// EntityID returns the deterministic 6-part entity ID:
	// org.platform.domain.system.type.instance.
	EntityID() string

	// Triples returns every fact this payload asserts about the entity.
	Triples() []Triple
}
