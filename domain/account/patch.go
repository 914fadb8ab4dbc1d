package account

// AttributeUpdate is a SCIM-style patch: a set of additions/replacements
// applied on top of an observed Attributes, plus a set of paths to remove.
// Password is a special case: any add/replace/remove naming
// "password" is silently ignored, since password changes go through
// UpdatePassword instead.
type AttributeUpdate struct {
	Set    map[string]any
	Remove []string
}

// Apply produces the post-patch Attributes by layering u onto observed,
// leaving observed's Password, AccountID, and any field not named by u
// untouched.
func (u AttributeUpdate) Apply(observed Attributes) Attributes {
	result := observed
	if result.Extra == nil {
		result.Extra = map[string]any{}
	} else {
		merged := make(map[string]any, len(observed.Extra))
		for k, v := range observed.Extra {
			merged[k] = v
		}
		result.Extra = merged
	}

	for path, value := range u.Set {
		switch path {
		case "password":
			continue
		case "userName":
			if s, ok := value.(string); ok {
				result.UserName = s
			}
		case "email":
			if s, ok := value.(string); ok {
				result.Email = s
			}
		case "phone":
			if s, ok := value.(string); ok {
				result.Phone = s
			}
		case "active":
			if b, ok := value.(bool); ok {
				result.Active = b
			}
		default:
			result.Extra[path] = value
		}
	}

	for _, path := range u.Remove {
		switch path {
		case "password":
			continue
		case "userName":
			// userName is required; a remove of it is a no-op rather than
			// leaving the account with no unique identifier.
		case "email":
			result.Email = ""
		case "phone":
			result.Phone = ""
		case "active":
			result.Active = false
		default:
			delete(result.Extra, path)
		}
	}

	return result
}
