package conversation

import "encoding/json"

// Role is the closed message role enumeration.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole maps a textual role onto the closed set. Unknown values coerce
// to RoleUser with recognized=false so the caller can surface the recovery;
// the parser itself never errors and never logs. The leniency tolerates
// upstream data drift.
func ParseRole(raw string) (role Role, recognized bool) {
	switch raw {
	case "user":
		return RoleUser, true
	case "assistant":
		return RoleAssistant, true
	case "system":
		return RoleSystem, true
	default:
		return RoleUser, false
	}
}

// UnmarshalJSON applies the same coercion on the wire path.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, _ := ParseRole(raw)
	*r = parsed
	return nil
}
