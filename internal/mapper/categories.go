package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/monarch-reports/internal/common"
	"github.com/Veraticus/monarch-reports/internal/model"
)

type categoriesPayload struct {
	Categories []categoryNode `json:"categories"`
}

type categoryNode struct {
	ID    *identifier `json:"id"`
	Name  *string     `json:"name"`
	Group *named      `json:"group"`
}

// Categories builds the category id to group name lookup used when mapping
// transactions.
func Categories(raw json.RawMessage) (model.CategoryGroups, error) {
	var payload categoriesPayload
	if err := decode(raw, &payload, "categories"); err != nil {
		return nil, err
	}
	if payload.Categories == nil {
		return nil, missing("categories")
	}

	groups := make(model.CategoryGroups, len(payload.Categories))
	for i, node := range payload.Categories {
		path := fmt.Sprintf("categories[%d]", i)
		if node.ID == nil {
			return nil, missing(path + ".id")
		}
		if node.Group == nil {
			return nil, missing(path + ".group")
		}
		if node.Group.ID == nil {
			return nil, missing(path + ".group.id")
		}
		groupName, err := requireString(node.Group.Name, path+".group.name")
		if err != nil {
			return nil, err
		}

		id := node.ID.String()
		if _, dup := groups[id]; dup {
			return nil, common.NewValidationError(path+".id", "duplicate category id "+id)
		}
		groups[id] = groupName
	}

	return groups, nil
}
