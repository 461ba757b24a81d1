package rules

// Rules is the whole rule table: one RuleGroup per name role. It is built
// once and never modified afterwards, so a single instance can serve any
// number of goroutines.
type Rules struct {
	firstName   RuleGroup
	lastName    RuleGroup
	middleName  RuleGroup
	skipped     []SkippedRecord
	fingerprint uint64
}

func New(firstName, lastName, middleName RuleGroup) *Rules {
	return &Rules{
		firstName:  firstName,
		lastName:   lastName,
		middleName: middleName,
	}
}

func (rules *Rules) FirstName() *RuleGroup {
	return &rules.firstName
}

func (rules *Rules) LastName() *RuleGroup {
	return &rules.lastName
}

func (rules *Rules) MiddleName() *RuleGroup {
	return &rules.middleName
}

func (rules *Rules) Group(role Role) *RuleGroup {
	switch role {
	case LastName:
		return &rules.lastName
	case MiddleName:
		return &rules.middleName
	default:
		return &rules.firstName
	}
}

// Skipped lists the rule records dropped while loading the table.
func (rules *Rules) Skipped() []SkippedRecord {
	return append([]SkippedRecord(nil), rules.skipped...)
}

// Fingerprint is a hash of the source the table was loaded from, zero for
// tables assembled in code.
func (rules *Rules) Fingerprint() uint64 {
	return rules.fingerprint
}

func (rules *Rules) Len() int {
	return rules.firstName.Len() + rules.lastName.Len() + rules.middleName.Len()
}
