package transform

import "strings"

// Principal is one named-principal slot on a registry export row. Name may
// be a person or a business; Address is optional and falls back to the
// entity's statutory agent address when empty.
type Principal struct {
	Name    string
	Address string
}

// SourceRecord is one row of the corporation-registry export. The field
// layout mirrors the export's column contract: up to 22 named-principal
// slots across five role groups. Validated at the ingestion boundary; the
// transform stage never looks columns up dynamically.
type SourceRecord struct {
	EntityName    string
	EntityID      string
	County        string
	DomicileState string
	AgentAddress  string

	StatutoryAgents [3]Principal
	Managers        [5]Principal
	Members         [5]Principal
	ManagerMembers  [5]Principal
	Individuals     [4]Principal
}

// Role names assigned to target records, one per principal group.
const (
	RoleStatutoryAgent = "Statutory Agent"
	RoleManager        = "Manager"
	RoleMember         = "Member"
	RoleManagerMember  = "Manager/Member"
	RoleIndividual     = "Individual"
)

// rolePrincipal pairs a principal slot with its role for ordered traversal.
type rolePrincipal struct {
	role      string
	principal Principal
}

// orderedPrincipals returns every slot in the export's column order,
// including empty ones. Callers skip blanks.
func (r *SourceRecord) orderedPrincipals() []rolePrincipal {
	out := make([]rolePrincipal, 0, 22)
	for _, p := range r.StatutoryAgents {
		out = append(out, rolePrincipal{RoleStatutoryAgent, p})
	}
	for _, p := range r.Managers {
		out = append(out, rolePrincipal{RoleManager, p})
	}
	for _, p := range r.Members {
		out = append(out, rolePrincipal{RoleMember, p})
	}
	for _, p := range r.ManagerMembers {
		out = append(out, rolePrincipal{RoleManagerMember, p})
	}
	for _, p := range r.Individuals {
		out = append(out, rolePrincipal{RoleIndividual, p})
	}
	return out
}

// PrincipalNames returns every populated principal name in column order,
// deduplicated case-insensitively. This is the eCorp side of the
// name-match comparison.
func (r *SourceRecord) PrincipalNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, rp := range r.orderedPrincipals() {
		name := strings.TrimSpace(rp.principal.Name)
		if name == "" {
			continue
		}
		key := strings.ToUpper(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	return names
}

// TargetRecord is one transformed output row, one per extracted principal.
// IsEntity marks business principals: those keep FirstName/LastName empty.
type TargetRecord struct {
	RecordID         string
	SourceEntityName string
	SourceEntityID   string
	FirstName        string
	LastName         string
	OwnerFullName    string
	AddressLine1     string
	AddressLine2     string
	City             string
	State            string
	Zip              string
	County           string
	TitleRole        string
	IsEntity         bool
}
