package model

// CategoryGroups maps a category identifier to the display name of the group
// the category rolls up into. It is built once per run and only read after.
type CategoryGroups map[string]string

// Group returns the group name for a category id.
func (c CategoryGroups) Group(categoryID string) (string, bool) {
	if c == nil {
		return "", false
	}
	name, ok := c[categoryID]
	return name, ok
}
