package rules

type Role int8

const (
	FirstName Role = iota
	LastName
	MiddleName
)

var roleTokens = [...]string{
	FirstName:  "firstname",
	LastName:   "lastname",
	MiddleName: "middlename",
}

func Roles() []Role {
	return []Role{FirstName, LastName, MiddleName}
}

// Value is the key under which the role's rules live in a rule table.
func (r Role) Value() string {
	if r < FirstName || r > MiddleName {
		return ""
	}
	return roleTokens[r]
}

func (r Role) String() string {
	return r.Value()
}

func RoleOf(token string) (Role, bool) {
	for r, t := range roleTokens {
		if t == token {
			return Role(r), true
		}
	}
	return FirstName, false
}

type ListKind int8

const (
	Exceptions ListKind = iota
	Suffixes
)

func (k ListKind) String() string {
	if k == Exceptions {
		return "exceptions"
	}
	return "suffixes"
}
